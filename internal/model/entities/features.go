package entities

// FeatureVector is the input of the crop model. JSON names and order are fixed by the
// inference service: N, P, K, temperature, humidity, ph, rainfall.
type FeatureVector struct {
	N           float64 `json:"N"`
	P           float64 `json:"P"`
	K           float64 `json:"K"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Ph          float64 `json:"ph"`
	Rainfall    float64 `json:"rainfall"`
}

// Values returns the features in model order.
func (f FeatureVector) Values() [7]float64 {
	return [7]float64{f.N, f.P, f.K, f.Temperature, f.Humidity, f.Ph, f.Rainfall}
}
