package models

import "testing"

func TestGeometry(t *testing.T) {
	if SpectrumLength != 3653 {
		t.Fatalf("SpectrumLength = %d, want 3653", SpectrumLength)
	}
	if WindowEnd > FrameLength || DarkHighEnd > FrameLength {
		t.Fatal("window or dark range exceeds frame length")
	}
	if (DarkLowEnd-DarkLowStart) != 16 || (DarkHighEnd-DarkHighStart) != 6 {
		t.Fatalf("dark range sizes = %d/%d, want 16/6",
			DarkLowEnd-DarkLowStart, DarkHighEnd-DarkHighStart)
	}
}

func TestAcquisitionConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		start   uint16
		end     uint16
		wantErr bool
	}{
		{"default window", 0, 3647, false},
		{"narrow window", 100, 101, false},
		{"equal", 100, 100, true},
		{"inverted", 200, 100, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultAcquisitionConfig()
			cfg.PixelStart, cfg.PixelEnd = tc.start, tc.end
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestDefaultAcquisitionConfig(t *testing.T) {
	cfg := DefaultAcquisitionConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
	if cfg.Scans != 1 || cfg.ExposureTimeUS != 1000 || cfg.ScanMode != 3 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}
