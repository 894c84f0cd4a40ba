package config

import "time"

// File represents the structure of the .ytanalyzer configuration file.
// Zero values leave the corresponding default untouched.
type File struct {
	APIURL       string        `yaml:"api_url,omitempty"`
	APIToken     string        `yaml:"api_token,omitempty"`
	Timeout      time.Duration `yaml:"timeout,omitempty"`
	Proxy        string        `yaml:"proxy,omitempty"`
	OutputDir    string        `yaml:"output_dir,omitempty"`
	Perspective  string        `yaml:"perspective,omitempty"`
	HistoryLimit int           `yaml:"history_limit,omitempty"`
	Batch        int           `yaml:"batch,omitempty"`
	Listen       string        `yaml:"listen,omitempty"`
	CacheMaxAge  time.Duration `yaml:"cache_max_age,omitempty"`
	DBDir        string        `yaml:"db_dir,omitempty"`
}

// Apply copies every field set in the file onto cfg.
func (cf *File) Apply(cfg *Config) {
	setString(&cfg.APIURL, cf.APIURL)
	setString(&cfg.APIToken, cf.APIToken)
	setString(&cfg.Proxy, cf.Proxy)
	setString(&cfg.OutputDir, cf.OutputDir)
	setString(&cfg.Perspective, cf.Perspective)
	setString(&cfg.Listen, cf.Listen)
	setString(&cfg.DBDir, cf.DBDir)

	if cf.Timeout != 0 {
		cfg.Timeout = cf.Timeout
	}
	if cf.CacheMaxAge != 0 {
		cfg.CacheMaxAge = cf.CacheMaxAge
	}
	if cf.HistoryLimit != 0 {
		cfg.HistoryLimit = cf.HistoryLimit
	}
	if cf.Batch != 0 {
		cfg.Batch = cf.Batch
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
