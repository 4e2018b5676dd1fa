package dbcore

import "testing"

func TestCP1252Converter_TryDecode(t *testing.T) {
	tests := []struct {
		description string
		input       []byte
		wantText    string
		wantOK      bool
	}{
		{description: "empty input decodes to empty string", input: nil, wantText: "", wantOK: true},
		{description: "plain ASCII round-trips", input: []byte("Dupont"), wantText: "Dupont", wantOK: true},
		{description: "windows-1252 accented byte decodes", input: []byte{0xE9}, wantText: "é", wantOK: true},
		{description: "byte undefined in windows-1252 falls back to utf8", input: []byte{0x81}, wantOK: false},
		{description: "utf8 sequence containing a windows-1252-undefined byte falls back and decodes", input: []byte{0xC2, 0x81}, wantText: "\u0081", wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			text, ok := DefaultConverter.TryDecode(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && text != tt.wantText {
				t.Errorf("text = %q, want %q", text, tt.wantText)
			}
		})
	}
}

func TestCP1252Converter_Encode(t *testing.T) {
	out, err := DefaultConverter.Encode("Dupont")
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if string(out) != "Dupont" {
		t.Errorf("Encode() = %q, want %q", out, "Dupont")
	}
}
