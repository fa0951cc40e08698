package media

import "testing"

func TestPrice(t *testing.T) {
	tests := []struct {
		kind Kind
		want float64
	}{
		{KindImage, 0.18},
		{KindVideo, 1.96},
		{KindMusic, 0.68},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			got, err := Price(tt.kind)
			if err != nil {
				t.Fatalf("Price failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Price(%s) = %v, want %v", tt.kind, got, tt.want)
			}
		})
	}

	if _, err := Price(Kind("hologram")); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestEstimateCost(t *testing.T) {
	got, err := EstimateCost(KindVideo, 3)
	if err != nil {
		t.Fatalf("EstimateCost failed: %v", err)
	}
	if want := 3 * VideoPriceUSD; got != want {
		t.Errorf("EstimateCost = %v, want %v", got, want)
	}

	if _, err := EstimateCost(KindImage, -1); err == nil {
		t.Error("expected error for negative count")
	}
}

func TestValidVideoDuration(t *testing.T) {
	for _, d := range VideoDurations {
		if !ValidVideoDuration(d) {
			t.Errorf("expected %d to be a valid video duration", d)
		}
	}
	if ValidVideoDuration(5) {
		t.Error("5s is not a valid video duration")
	}
}

func TestValidMusicDuration(t *testing.T) {
	if !ValidMusicDuration(MusicMinSeconds) || !ValidMusicDuration(MusicMaxSeconds) {
		t.Error("expected bounds to be valid")
	}
	if ValidMusicDuration(MusicMinSeconds - 1) {
		t.Error("below minimum should be invalid")
	}
	if ValidMusicDuration(MusicMaxSeconds + 1) {
		t.Error("above maximum should be invalid")
	}
}
