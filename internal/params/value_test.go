package params

import "testing"

func TestFromArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []any
		want    Value
		wantErr bool
	}{
		{"float32", []any{float32(0.5)}, Scalar(0.5), false},
		{"int32", []any{int32(3)}, Scalar(3), false},
		{"float64", []any{0.25}, Scalar(0.25), false},
		{"bool", []any{true}, Scalar(1), false},
		{"numeric string", []any{" 1.5 "}, Scalar(1.5), false},
		{"list", []any{float32(1), int32(2), "3"}, List(1, 2, 3), false},
		{"empty", nil, Value{}, true},
		{"word", []any{"loud"}, Value{}, true},
		{"blob", []any{[]byte{1}}, Value{}, true},
		{"list with word", []any{float32(1), "x"}, Value{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromArgs(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("value = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValueString(t *testing.T) {
	if s := Scalar(0.5).String(); s != "0.5" {
		t.Errorf("Scalar string = %q", s)
	}
	if s := List(1, 2).String(); s != "[1 2]" {
		t.Errorf("List string = %q", s)
	}
	if List().Float(7) != 7 {
		t.Error("empty list should yield the default")
	}
}
