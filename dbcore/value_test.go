package dbcore

import "testing"

func TestTypedValue_Render(t *testing.T) {
	tests := []struct {
		description   string
		value         TypedValue
		wantText      string
		wantMatchable bool
	}{
		{description: "integer renders canonical decimal", value: integerValue(42), wantText: "42", wantMatchable: true},
		{description: "negative integer", value: integerValue(-7), wantText: "-7", wantMatchable: true},
		{description: "float renders canonical decimal", value: floatValue(3.5), wantText: "3.5", wantMatchable: true},
		{description: "string renders as-is", value: stringValue("Dupont"), wantText: "Dupont", wantMatchable: true},
		{description: "null never matches", value: nullValue(), wantMatchable: false},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			text, matchable := tt.value.Render()
			if matchable != tt.wantMatchable {
				t.Fatalf("matchable = %v, want %v", matchable, tt.wantMatchable)
			}
			if matchable && text != tt.wantText {
				t.Errorf("text = %q, want %q", text, tt.wantText)
			}
		})
	}
}
