package core

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.NCM.APIBase != "https://music.163.com" {
		t.Errorf("NCM.APIBase = %q", cfg.NCM.APIBase)
	}
	if cfg.NCM.ShortBase != "https://163cn.tv" {
		t.Errorf("NCM.ShortBase = %q", cfg.NCM.ShortBase)
	}
	if cfg.NCM.Bitrate != 320000 {
		t.Errorf("NCM.Bitrate = %d, want 320000", cfg.NCM.Bitrate)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("Server.ReadTimeout = %v", cfg.Server.ReadTimeout)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}

	if cfg.Store.DedupSize != 10000 {
		t.Errorf("Store.DedupSize = %d", cfg.Store.DedupSize)
	}
	if cfg.Store.BloomFPRate != 0.001 {
		t.Errorf("Store.BloomFPRate = %v", cfg.Store.BloomFPRate)
	}

	if cfg.Download.Concurrency != 3 {
		t.Errorf("Download.Concurrency = %d", cfg.Download.Concurrency)
	}
}
