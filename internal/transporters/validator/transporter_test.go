package validator

import (
	"testing"
	"tms/pkg/logger"
	"tms/pkg/model"
)

func TestTransporterValidator_Validate(t *testing.T) {
	v := NewTransporterValidator(logger.Discard())

	tests := []struct {
		name      string
		req       model.TransporterRequest
		wantError bool
	}{
		{
			name:      "valid",
			req:       model.TransporterRequest{CompanyName: "Acme Haulage", Rating: 4.5, AvailableTrucks: map[string]int{"Flatbed": 5}},
			wantError: false,
		},
		{
			name:      "empty fleet is allowed",
			req:       model.TransporterRequest{CompanyName: "Acme Haulage", Rating: 0, AvailableTrucks: map[string]int{}},
			wantError: false,
		},
		{
			name:      "missing company",
			req:       model.TransporterRequest{Rating: 3, AvailableTrucks: map[string]int{"Flatbed": 1}},
			wantError: true,
		},
		{
			name:      "rating above five",
			req:       model.TransporterRequest{CompanyName: "Acme", Rating: 5.1, AvailableTrucks: map[string]int{"Flatbed": 1}},
			wantError: true,
		},
		{
			name:      "negative rating",
			req:       model.TransporterRequest{CompanyName: "Acme", Rating: -1, AvailableTrucks: map[string]int{"Flatbed": 1}},
			wantError: true,
		},
		{
			name:      "nil trucks map",
			req:       model.TransporterRequest{CompanyName: "Acme", Rating: 3},
			wantError: true,
		},
		{
			name:      "negative truck count",
			req:       model.TransporterRequest{CompanyName: "Acme", Rating: 3, AvailableTrucks: map[string]int{"Flatbed": -2}},
			wantError: true,
		},
		{
			name:      "empty truck type",
			req:       model.TransporterRequest{CompanyName: "Acme", Rating: 3, AvailableTrucks: map[string]int{"": 2}},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}
