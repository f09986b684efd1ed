package actuator

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/zbotics/stride/pkg/gait"
)

func TestServoCalibrationDegrees(t *testing.T) {
	cal := ServoCalibration{ID: 33, Center: 2048, CountsPerRev: 4096}

	tests := []struct {
		raw  int
		want float64
	}{
		{2048, 0},
		{3072, 90},
		{1024, -90},
		{4096, 180},
		{0, -180},
		{2059, 0.966796875},
	}
	for _, tt := range tests {
		if got := cal.Degrees(tt.raw); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Degrees(%d) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestServoCalibrationRaw(t *testing.T) {
	cal := ServoCalibration{ID: 33, Center: 2048, CountsPerRev: 4096}

	tests := []struct {
		deg  float64
		want int
	}{
		{0, 2048},
		{90, 3072},
		{-90, 1024},
		{45.5, 2566},
	}
	for _, tt := range tests {
		if got := cal.Raw(tt.deg); got != tt.want {
			t.Errorf("Raw(%v) = %d, want %d", tt.deg, got, tt.want)
		}
	}
}

func TestServoCalibrationRoundTrip(t *testing.T) {
	cal := ServoCalibration{ID: 44, Center: 2048, CountsPerRev: 4096}
	for raw := 0; raw <= 4096; raw += 64 {
		if got := cal.Raw(cal.Degrees(raw)); got != raw {
			t.Errorf("round trip %d -> %v -> %d", raw, cal.Degrees(raw), got)
		}
	}
}

func TestServoCalibrationZeroCounts(t *testing.T) {
	cal := ServoCalibration{ID: 1}
	if got := cal.Degrees(1234); got != 0 {
		t.Errorf("Degrees with zero counts per rev = %v, want 0", got)
	}
}

func TestCalibrationServoIDs(t *testing.T) {
	ids := DefaultCalibration().ServoIDs()
	want := []int{31, 32, 33, 34, 35, 41, 42, 43, 44, 45}

	if len(ids) != len(want) {
		t.Fatalf("got %d servo IDs, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ServoIDs()[%d] = %d, want %d", i, ids[i], want[i])
		}
	}
}

func TestCalibrationByID(t *testing.T) {
	cal := DefaultCalibration()

	name, sc, ok := cal.ByID(34)
	if !ok {
		t.Fatal("ByID(34) not found")
	}
	if name != gait.LeftKnee {
		t.Errorf("ByID(34) joint = %s, want %s", name, gait.LeftKnee)
	}
	if sc.ID != 34 {
		t.Errorf("ByID(34) ID = %d", sc.ID)
	}

	if _, _, ok := cal.ByID(99); ok {
		t.Error("ByID(99) should not be found")
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stride.json")
	data := `{
		"port": "/dev/ttyUSB1",
		"calibration": {
			"left_knee": {"id": 7, "center": 2000, "counts_per_rev": 4096}
		}
	}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "/dev/ttyUSB1" {
		t.Errorf("port = %q", cfg.Port)
	}

	cal := cfg.ResolveCalibration()
	sc, ok := cal[gait.LeftKnee]
	if !ok {
		t.Fatal("left_knee missing from loaded calibration")
	}
	if sc.ID != 7 || sc.Center != 2000 {
		t.Errorf("unexpected calibration: %+v", sc)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestConfigCalibrationFallback(t *testing.T) {
	cfg := Config{Port: "/dev/ttyUSB0"}

	cal := cfg.ResolveCalibration()
	if len(cal) != len(gait.LegJoints()) {
		t.Fatalf("fallback calibration has %d joints, want %d", len(cal), len(gait.LegJoints()))
	}
	if cal[gait.LeftHipYaw].ID != 31 {
		t.Errorf("fallback left hip yaw ID = %d, want 31", cal[gait.LeftHipYaw].ID)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stride.json")
	cfg := Config{Port: "/dev/ttyACM0", Calibration: DefaultCalibration()}

	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Port != cfg.Port {
		t.Errorf("port = %q, want %q", loaded.Port, cfg.Port)
	}
	if got := loaded.ResolveCalibration()[gait.RightAnkle].ID; got != 45 {
		t.Errorf("right ankle ID = %d, want 45", got)
	}
}
