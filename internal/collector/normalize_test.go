package collector

import (
	"reflect"
	"testing"
)

func TestFlattenAttributes(t *testing.T) {
	in := map[string]interface{}{
		"Location": "eastus",
		"network": map[string]interface{}{
			"subnet": map[string]interface{}{
				"cidr": "10.0.0.0/24",
			},
		},
		"zones":  []interface{}{"1", "2"},
		"unset":  nil,
		"weight": float64(10),
	}

	got := FlattenAttributes("", in)

	want := map[string]interface{}{
		"location":            "eastus",
		"network.subnet.cidr": "10.0.0.0/24",
		"zones.0":             "1",
		"zones.1":             "2",
		"weight":              float64(10),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FlattenAttributes() = %v, want %v", got, want)
	}
}

func TestExtractIPAddresses(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  []string
	}{
		{
			name: "nested maps and lists",
			input: map[string]interface{}{
				"ipConfigurations": []interface{}{
					map[string]interface{}{"privateIPAddress": "10.1.1.4"},
				},
				"addressSpace": map[string]interface{}{
					"addressPrefixes": []interface{}{"10.1.0.0/16"},
				},
			},
			want: []string{"10.1.0.0/16", "10.1.1.4"},
		},
		{
			name:  "duplicates removed",
			input: map[string]interface{}{"a": "10.0.0.1", "b": "host 10.0.0.1 again"},
			want:  []string{"10.0.0.1"},
		},
		{
			name:  "no addresses",
			input: map[string]interface{}{"name": "vm-1"},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractIPAddresses(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractIPAddresses() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags(map[string]interface{}{
		"Owner":       "alice",
		"cost-center": float64(42),
		"empty":       nil,
	})

	want := map[string]string{
		"owner":       "alice",
		"cost-center": "42",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeTags() = %v, want %v", got, want)
	}
}
