package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSettings_Defaults(t *testing.T) {
	s := &Settings{}

	if got := s.GetDevice(); got != "1k" {
		t.Errorf("GetDevice() default = %q, want %q", got, "1k")
	}
	if got := s.GetSeed(); got != 1 {
		t.Errorf("GetSeed() default = %d, want 1", got)
	}
	if s.DefaultPackage != "" {
		t.Errorf("DefaultPackage should be empty, got %q", s.DefaultPackage)
	}
}

func TestSettings_Clear(t *testing.T) {
	s := &Settings{
		DefaultDevice:  "8k",
		DefaultPackage: "ct256",
		DefaultSeed:    42,
		RunLogPath:     "/tmp/run.log",
	}

	s.Clear()

	if s.DefaultDevice != "" || s.DefaultPackage != "" || s.DefaultSeed != 0 || s.RunLogPath != "" {
		t.Error("Clear() should reset all fields to empty")
	}
}

func TestSettings_SaveLoad(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "icepnr-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "icepnrrc")

	original := &Settings{
		DefaultDevice:  "8k",
		DefaultPackage: "ct256",
		DefaultSeed:    7,
		ChipdbDirs:     []string{"/usr/local/share/icepnr"},
		RunLogPath:     "/var/log/icepnr/run.log",
	}

	if err := original.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() failed: %v", err)
	}

	if loaded.DefaultDevice != original.DefaultDevice {
		t.Errorf("DefaultDevice mismatch: got %q, want %q", loaded.DefaultDevice, original.DefaultDevice)
	}
	if loaded.DefaultPackage != original.DefaultPackage {
		t.Errorf("DefaultPackage mismatch: got %q, want %q", loaded.DefaultPackage, original.DefaultPackage)
	}
	if loaded.DefaultSeed != original.DefaultSeed {
		t.Errorf("DefaultSeed mismatch: got %d, want %d", loaded.DefaultSeed, original.DefaultSeed)
	}
	if len(loaded.ChipdbDirs) != 1 || loaded.ChipdbDirs[0] != original.ChipdbDirs[0] {
		t.Errorf("ChipdbDirs mismatch: got %v, want %v", loaded.ChipdbDirs, original.ChipdbDirs)
	}
	if loaded.RunLogPath != original.RunLogPath {
		t.Errorf("RunLogPath mismatch: got %q, want %q", loaded.RunLogPath, original.RunLogPath)
	}
}

func TestSettings_LoadNonExistent(t *testing.T) {
	s, err := LoadFrom("/nonexistent/path/.icepnrrc")
	if err != nil {
		t.Fatalf("LoadFrom() non-existent should not error: %v", err)
	}
	if s == nil {
		t.Fatal("LoadFrom() should return non-nil Settings")
	}
	if s.DefaultDevice != "" {
		t.Error("LoadFrom() non-existent should return empty settings")
	}
}

func TestSettings_LoadInvalidYAML(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "icepnr-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "icepnrrc")
	if err := os.WriteFile(path, []byte("default_device: [unterminated"), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("LoadFrom() with invalid YAML should error")
	}
}

func TestSettings_SaveCreatesDirectory(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "icepnr-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "subdir", "nested", "icepnrrc")

	s := &Settings{DefaultDevice: "8k"}
	if err := s.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() should create directories: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("SaveTo() should have created the file")
	}
}

func TestDefaultSettingsPath(t *testing.T) {
	path := DefaultSettingsPath()
	if path == "" {
		t.Error("DefaultSettingsPath() should not be empty")
	}
	if !filepath.IsAbs(path) && path != "/tmp/.icepnrrc" {
		t.Errorf("DefaultSettingsPath() should be absolute or fallback, got %q", path)
	}
}

func TestSettings_FindChipdb(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "icepnr-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	if err := os.WriteFile(filepath.Join(tmpDir, "chipdb-1k.bin"), []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to write chipdb stub: %v", err)
	}

	s := &Settings{ChipdbDirs: []string{filepath.Join(tmpDir, "missing"), tmpDir}}
	path, ok := s.FindChipdb("1k")
	if !ok {
		t.Fatal("FindChipdb() should find chipdb-1k.bin in the second directory")
	}
	if path != filepath.Join(tmpDir, "chipdb-1k.bin") {
		t.Errorf("FindChipdb() = %q, want %q", path, filepath.Join(tmpDir, "chipdb-1k.bin"))
	}

	if _, ok := s.FindChipdb("8k"); ok {
		t.Error("FindChipdb() should not find chipdb-8k.bin")
	}
}

func TestLoad(t *testing.T) {
	originalHome := os.Getenv("HOME")
	defer os.Setenv("HOME", originalHome)

	tmpDir, err := os.MkdirTemp("", "icepnr-test-home-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	os.Setenv("HOME", tmpDir)

	s, err := Load()
	if err != nil {
		t.Fatalf("Load() with non-existent file should not error: %v", err)
	}
	if s == nil {
		t.Fatal("Load() should return non-nil Settings")
	}
	if s.DefaultDevice != "" {
		t.Error("Load() with non-existent file should return empty settings")
	}

	rcPath := filepath.Join(tmpDir, ".icepnrrc")
	if err := os.WriteFile(rcPath, []byte("default_device: 8k\ndefault_package: ct256\n"), 0644); err != nil {
		t.Fatalf("Failed to write test settings: %v", err)
	}

	s, err = Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if s.DefaultDevice != "8k" {
		t.Errorf("Load() DefaultDevice = %q, want %q", s.DefaultDevice, "8k")
	}
	if s.DefaultPackage != "ct256" {
		t.Errorf("Load() DefaultPackage = %q, want %q", s.DefaultPackage, "ct256")
	}
}

func TestSave(t *testing.T) {
	originalHome := os.Getenv("HOME")
	defer os.Setenv("HOME", originalHome)

	tmpDir, err := os.MkdirTemp("", "icepnr-test-home-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	os.Setenv("HOME", tmpDir)

	s := &Settings{DefaultDevice: "8k", DefaultSeed: 99}

	if err := s.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	expectedPath := filepath.Join(tmpDir, ".icepnrrc")
	if _, err := os.Stat(expectedPath); os.IsNotExist(err) {
		t.Fatalf("Save() did not create file at %s", expectedPath)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() after Save() failed: %v", err)
	}
	if loaded.DefaultDevice != "8k" {
		t.Errorf("After Save(), DefaultDevice = %q, want %q", loaded.DefaultDevice, "8k")
	}
	if loaded.DefaultSeed != 99 {
		t.Errorf("After Save(), DefaultSeed = %d, want 99", loaded.DefaultSeed)
	}
}

func TestDefaultSettingsPath_NoHome(t *testing.T) {
	originalHome := os.Getenv("HOME")
	defer os.Setenv("HOME", originalHome)

	os.Unsetenv("HOME")

	path := DefaultSettingsPath()
	if path != "/tmp/.icepnrrc" {
		t.Errorf("DefaultSettingsPath() with no HOME = %q, want %q", path, "/tmp/.icepnrrc")
	}
}

func TestLoadFrom_ReadError(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "icepnr-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	dirAsFile := filepath.Join(tmpDir, "icepnrrc")
	if err := os.Mkdir(dirAsFile, 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	if _, err := LoadFrom(dirAsFile); err == nil {
		t.Error("LoadFrom() should error when path is a directory")
	}
}

func TestSaveTo_MkdirError(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "icepnr-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	blockingFile := filepath.Join(tmpDir, "blocker")
	if err := os.WriteFile(blockingFile, []byte("blocking"), 0644); err != nil {
		t.Fatalf("Failed to create blocking file: %v", err)
	}

	path := filepath.Join(blockingFile, "subdir", "icepnrrc")
	s := &Settings{DefaultDevice: "8k"}

	if err := s.SaveTo(path); err == nil {
		t.Error("SaveTo() should fail when directory creation fails")
	}
}
