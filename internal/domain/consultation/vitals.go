package consultation

import "fmt"

// VitalSigns is the optional readings snapshot embedded in a consultation.
// BMI and BMIInterpretation are derived from Weight and Height at capture
// time and stored on the record, so a persisted consultation always carries
// the value that was valid for its inputs.
type VitalSigns struct {
	SystolicBP       *float64 `json:"systolic_bp,omitempty"`
	DiastolicBP      *float64 `json:"diastolic_bp,omitempty"`
	HeartRate        *float64 `json:"heart_rate,omitempty"`
	RespiratoryRate  *float64 `json:"respiratory_rate,omitempty"`
	Temperature      *float64 `json:"temperature,omitempty"`
	OxygenSaturation *float64 `json:"oxygen_saturation,omitempty"`
	Glucose          *float64 `json:"glucose,omitempty"`
	Weight           *float64 `json:"weight,omitempty"` // kg
	Height           *float64 `json:"height,omitempty"` // m

	BMI               *string `json:"bmi,omitempty"`
	BMIInterpretation *string `json:"bmi_interpretation,omitempty"`
}

// ComputeBMI returns weight/height² formatted to two decimals together with
// its qualitative interpretation. ok is false unless both inputs are
// positive; in that case no value is produced at all.
func ComputeBMI(weight, height float64) (value, interpretation string, ok bool) {
	if weight <= 0 || height <= 0 {
		return "", "", false
	}
	bmi := weight / (height * height)
	switch {
	case bmi < 18.5:
		interpretation = "Bajo peso"
	case bmi < 25:
		interpretation = "Normal"
	case bmi < 30:
		interpretation = "Sobrepeso"
	default:
		interpretation = "Obesidad"
	}
	return fmt.Sprintf("%.2f", bmi), interpretation, true
}

// Recalculate recomputes the derived BMI fields from Weight and Height,
// clearing them when either input is missing or non-positive.
func (v *VitalSigns) Recalculate() {
	var weight, height float64
	if v.Weight != nil {
		weight = *v.Weight
	}
	if v.Height != nil {
		height = *v.Height
	}
	value, interp, ok := ComputeBMI(weight, height)
	if !ok {
		v.BMI = nil
		v.BMIInterpretation = nil
		return
	}
	v.BMI = &value
	v.BMIInterpretation = &interp
}
