package domain

// ProductInfo is the product portion of the catalog's variant payload.
// Field names follow the catalog service's wire contract.
type ProductInfo struct {
	Nombre string  `json:"nombre"`
	Precio float64 `json:"precio"`
}

// VariantPayload is the catalog service's representation of a variant.
type VariantPayload struct {
	Producto  ProductInfo `json:"producto"`
	ImagenURL string      `json:"imagenUrl"`
}

// User is the identity service's representation of an account. Email is used
// for reminder events only and never exposed on collection endpoints.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
