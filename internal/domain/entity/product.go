package entity

// Product representa un producto del catálogo. Los lotes (StockBatch) lo referencian por ID.
// ID ya viene en forma canónica (ident.Canonical) desde el adaptador de datos.
type Product struct {
	ID          string
	Name        string
	Category    string
	HSNCode     string
	Description string
}

// UnknownProductName nombre usado cuando un producto no se encuentra en el catálogo.
const UnknownProductName = "Unknown"
