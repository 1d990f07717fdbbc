package core

import (
	"time"
)

type Config struct {
	NCM      NCMConfig
	Server   ServerConfig
	Log      LogConfig
	Store    StoreConfig
	Download DownloadConfig
}

type NCMConfig struct {
	APIBase    string
	ShortBase  string
	CookiePath string
	Bitrate    int
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type StoreConfig struct {
	HistoryPath string
	DedupSize   int
	BloomFPRate float64
}

type DownloadConfig struct {
	Dir         string
	Concurrency int
}

func DefaultConfig() *Config {
	return &Config{
		NCM: NCMConfig{
			APIBase:   "https://music.163.com",
			ShortBase: "https://163cn.tv",
			Bitrate:   320000,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Store: StoreConfig{
			HistoryPath: "./tunelink_history.db",
			DedupSize:   10000,
			BloomFPRate: 0.001,
		},
		Download: DownloadConfig{
			Concurrency: 3,
		},
	}
}
