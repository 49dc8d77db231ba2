package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Auth:   AuthConfig{JWTSecret: "test-secret-key-for-unit-testing"},
		Authz:  AuthzConfig{RegistrationCode: "1234", OverrideCode: "5678"},
		Admin:  AdminConfig{Username: "admin", Password: "admin123"},
		Report: ReportConfig{Timezone: "Asia/Kolkata"},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("期望校验通过，实际: %v", err)
	}
}

func TestValidate_Failures(t *testing.T) {
	cases := map[string]func(c *Config){
		"空 jwt_secret":    func(c *Config) { c.Auth.JWTSecret = "" },
		"短 jwt_secret":    func(c *Config) { c.Auth.JWTSecret = "short" },
		"端口越界":            func(c *Config) { c.Server.Port = 70000 },
		"缺少注册授权码":         func(c *Config) { c.Authz.RegistrationCode = "" },
		"缺少覆盖授权码":         func(c *Config) { c.Authz.OverrideCode = "" },
		"缺少管理员密码":         func(c *Config) { c.Admin.Password = "" },
		"无效时区":            func(c *Config) { c.Report.Timezone = "Mars/Olympus" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := validConfig()
			mutate(c)
			if err := c.Validate(); err == nil {
				t.Error("期望校验失败")
			}
		})
	}
}

func TestLoad_FileAndDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
auth:
  jwt_secret: "0123456789abcdef0123"
authz:
  registration_code: "1234"
  override_code: "5678"
admin:
  password: "admin123"
report:
  timezone: "UTC"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("期望默认端口 8080，实际: %d", cfg.Server.Port)
	}
	if cfg.Admin.Username != "admin" {
		t.Errorf("期望默认管理员 admin，实际: %s", cfg.Admin.Username)
	}
	if cfg.Auth.SessionTTL != 12*time.Hour {
		t.Errorf("期望 session_ttl=12h，实际: %v", cfg.Auth.SessionTTL)
	}
	if cfg.Report.Location() != time.UTC {
		t.Errorf("期望报表时区 UTC，实际: %v", cfg.Report.Location())
	}
}
