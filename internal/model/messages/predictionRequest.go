package messages

// PredictionRequest is the body of POST /predict.
type PredictionRequest struct {
	N         Number `json:"N"`
	P         Number `json:"P"`
	K         Number `json:"K"`
	Ph        Number `json:"ph"`
	Month     string `json:"month"`
	Latitude  Number `json:"latitude"`
	Longitude Number `json:"longitude"`
}

// Complete reports whether every required field is present.
func (r PredictionRequest) Complete() bool {
	for _, n := range []Number{r.N, r.P, r.K, r.Ph, r.Latitude, r.Longitude} {
		if !n.Present() {
			return false
		}
	}
	return r.Month != ""
}

type PredictionResponse struct {
	Crop           string `json:"crop"`
	CatalogVersion string `json:"catalog_version,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
