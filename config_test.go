package animgif

import "testing"

func TestLoadManifestParsesFields(t *testing.T) {
	data := []byte(`[
		{"delay": 10, "quality": 5, "disposal": "restoreBackground"},
		{"delayMs": 200, "transparent": "#ff0080"},
		{"transparent": {"r": 1, "g": 2, "b": 3}}
	]`)

	opts, err := LoadManifest(data)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if len(opts) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(opts))
	}

	if opts[0].DelayCentiseconds != 10 {
		t.Errorf("entry 0 delay = %d, want 10", opts[0].DelayCentiseconds)
	}
	if opts[0].Quality != 5 {
		t.Errorf("entry 0 quality = %d, want 5", opts[0].Quality)
	}
	if opts[0].Disposal != DisposalRestoreBackground {
		t.Errorf("entry 0 disposal = %v, want DisposalRestoreBackground", opts[0].Disposal)
	}

	if opts[1].DelayMS != 200 {
		t.Errorf("entry 1 delayMs = %d, want 200", opts[1].DelayMS)
	}
	if opts[1].Transparent == nil || opts[1].Transparent.R != 0xff || opts[1].Transparent.G != 0x00 || opts[1].Transparent.B != 0x80 {
		t.Errorf("entry 1 transparent = %+v, want (255,0,128)", opts[1].Transparent)
	}

	if opts[2].Transparent == nil || opts[2].Transparent.R != 1 || opts[2].Transparent.G != 2 || opts[2].Transparent.B != 3 {
		t.Errorf("entry 2 transparent = %+v, want (1,2,3)", opts[2].Transparent)
	}
}

func TestLoadManifestRejectsNonArray(t *testing.T) {
	_, err := LoadManifest([]byte(`{"delay": 10}`))
	if err == nil {
		t.Fatal("expected an error for a non-array manifest")
	}
}

func TestLoadManifestRejectsUnknownDisposal(t *testing.T) {
	_, err := LoadManifest([]byte(`[{"disposal": "spinAroundTwice"}]`))
	if err == nil {
		t.Fatal("expected an error for an unknown disposal value")
	}
}

func TestLoadManifestEmptyArray(t *testing.T) {
	opts, err := LoadManifest([]byte(`[]`))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if len(opts) != 0 {
		t.Errorf("expected 0 entries, got %d", len(opts))
	}
}
