package delta

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	preds := []uint16{0, 1, 0x0FFF, 2048, 4095}
	pixels := []uint16{0, 1, 0x0FFF, 4095, 17}

	for _, p := range preds {
		for _, px := range pixels {
			d := Encode(px, p)
			if d&^Mask != 0 {
				t.Fatalf("Encode(%d, %d) = %#x, high bits set", px, p, d)
			}
			got := Decode(d, p)
			want := px & Mask
			if got != want {
				t.Errorf("Decode(Encode(%d, %d), %d) = %d, want %d", px, p, p, got, want)
			}
		}
	}
}

func TestEncodeWraps(t *testing.T) {
	// pixel < prediction must wrap modulo 4096, not go negative.
	d := Encode(0, 1)
	if d != Mask {
		t.Errorf("Encode(0, 1) = %d, want %d", d, Mask)
	}
}

func TestPredictTopRow(t *testing.T) {
	if got := Predict(3, 0, 42, 99); got != 42 {
		t.Errorf("Predict(3, 0, 42, 99) = %d, want left=42", got)
	}
}

func TestPredictLeftColumn(t *testing.T) {
	if got := Predict(0, 3, 42, 99); got != 99 {
		t.Errorf("Predict(0, 3, 42, 99) = %d, want top=99", got)
	}
}

func TestPredictInteriorAverages(t *testing.T) {
	if got := Predict(1, 1, 10, 20); got != 15 {
		t.Errorf("Predict(1, 1, 10, 20) = %d, want 15", got)
	}
}

func TestPredictInteriorWideningAvoidsOverflow(t *testing.T) {
	// left+top would overflow a uint16 sum if not widened first.
	if got := Predict(1, 1, 0xFFFF, 0xFFFF); got != 0xFFFF {
		t.Errorf("Predict(1, 1, 0xFFFF, 0xFFFF) = %d, want 0xFFFF", got)
	}
}
