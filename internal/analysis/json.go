package analysis

import (
	"encoding/json"
	"math"
)

// NullFloat encodes NaN and infinities as JSON null.
type NullFloat float64

func (f NullFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

func (f *NullFloat) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = NullFloat(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = NullFloat(v)
	return nil
}

func (m *CorrMatrix) MarshalJSON() ([]byte, error) {
	vals := make([][]NullFloat, len(m.Values))
	for i, row := range m.Values {
		vals[i] = make([]NullFloat, len(row))
		for j, v := range row {
			vals[i][j] = NullFloat(v)
		}
	}
	return json.Marshal(struct {
		Fields []string      `json:"fields"`
		Values [][]NullFloat `json:"values"`
	}{m.Fields, vals})
}

func (g GroupMean) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Category string    `json:"category"`
		Value    NullFloat `json:"value"`
		Count    int       `json:"count"`
	}{g.Category, NullFloat(g.Value), g.Count})
}
