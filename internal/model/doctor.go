package model

// Doctor is static reference data loaded from the doctors table.
type Doctor struct {
	ID        string `csv:"doctor_id" json:"doctor_id"`
	Name      string `csv:"name" json:"name"`
	Specialty string `csv:"specialty" json:"specialty"`
	Location  string `csv:"location" json:"location"`
}
