package listing

import "testing"

func strp(s string) *string { return &s }

func TestClassifyTransmission(t *testing.T) {
	cases := []struct {
		name string
		in   *string
		want TransmissionClass
	}{
		{"nil", nil, TransmissionOther},
		{"empty", strp(""), TransmissionOther},
		{"automatic_word", strp("8-Speed Automatic"), TransmissionAutomatic},
		{"auto_upper", strp("AUTOMATIC"), TransmissionAutomatic},
		{"cvt", strp("CVT Transmission"), TransmissionAutomatic},
		{"a_slash_t", strp("6-Speed A/T"), TransmissionAutomatic},
		{"manual", strp("Manual"), TransmissionManual},
		{"manual_lower", strp("6-speed manual"), TransmissionManual},
		{"m_slash_t", strp("5-Speed M/T"), TransmissionManual},
		{"unknown", strp("Direct Drive"), TransmissionOther},
		// Both markers present: rule order wins, not specificity.
		{"auto_beats_manual", strp("Automatic w/ manual shift mode"), TransmissionAutomatic},
		{"manual_with_auto_marker", strp("manual (auto-rev match)"), TransmissionAutomatic},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyTransmission(tc.in); got != tc.want {
				t.Fatalf("ClassifyTransmission(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestClassifyFuel(t *testing.T) {
	cases := []struct {
		name string
		in   *string
		want FuelClass
	}{
		{"nil", nil, FuelOther},
		{"empty", strp(""), FuelOther},
		{"gasoline", strp("Gasoline"), FuelGasoline},
		{"gas_short", strp("Gas"), FuelGasoline},
		{"diesel", strp("Diesel"), FuelDiesel},
		{"hybrid", strp("Plug-In Hybrid"), FuelHybrid},
		{"electric", strp("Electric"), FuelElectric},
		{"flex", strp("E85 Flex Fuel"), FuelOther},
		// "Gas/Electric Hybrid" contains "gas" first in rule order.
		{"gas_electric_hybrid", strp("Gas/Electric Hybrid"), FuelGasoline},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyFuel(tc.in); got != tc.want {
				t.Fatalf("ClassifyFuel(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeTotalAndDeterministic(t *testing.T) {
	// Every raw record, including an all-nil one, yields a staging record.
	empty := Normalize(Raw{})
	if empty.TransmissionClass != TransmissionOther || empty.FuelClass != FuelOther {
		t.Fatalf("all-nil raw: got (%q, %q), want (other, other)", empty.TransmissionClass, empty.FuelClass)
	}

	raw := Raw{Transmission: strp("8-Speed Automatic"), FuelType: strp("Gasoline")}
	a := Normalize(raw)
	b := Normalize(raw)
	if a != b {
		t.Fatalf("Normalize not deterministic: %+v vs %+v", a, b)
	}
	if a.TransmissionClass != TransmissionAutomatic || a.FuelClass != FuelGasoline {
		t.Fatalf("got (%q, %q), want (automatic, gasoline)", a.TransmissionClass, a.FuelClass)
	}

	// Normalize must not mutate its input.
	if raw.Transmission == nil || *raw.Transmission != "8-Speed Automatic" {
		t.Fatal("Normalize mutated the raw record")
	}
}
