package env

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"zodiac_backend/internal/config"
)

const (
	auditFlushIntervalEnvName = "AUDIT_FLUSH_INTERVAL"
	auditBatchSizeEnvName     = "AUDIT_BATCH_SIZE"
	auditBackupCapEnvName     = "AUDIT_BACKUP_CAP"
	auditMaxQueueEnvName      = "AUDIT_MAX_QUEUE"
	auditMaxRetriesEnvName    = "AUDIT_MAX_RETRIES"
)

const (
	DefaultAuditFlushInterval = 30 * time.Second
	DefaultAuditBatchSize     = 50
	DefaultAuditBackupCap     = 1000
	DefaultAuditMaxQueue      = 5000
	DefaultAuditMaxRetries    = 5
)

type auditConfig struct {
	flushInterval time.Duration
	batchSize     int
	backupCap     int
	maxQueue      int
	maxRetries    int
}

// NewAuditConfig reads the audit settings from the environment.
// Unset variables keep their defaults.
func NewAuditConfig() (config.AuditConfig, error) {
	cfg := &auditConfig{
		flushInterval: DefaultAuditFlushInterval,
		batchSize:     DefaultAuditBatchSize,
		backupCap:     DefaultAuditBackupCap,
		maxQueue:      DefaultAuditMaxQueue,
		maxRetries:    DefaultAuditMaxRetries,
	}

	if raw := os.Getenv(auditFlushIntervalEnvName); len(raw) > 0 {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid audit flush interval: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("audit flush interval must be positive")
		}
		cfg.flushInterval = d
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{auditBatchSizeEnvName, &cfg.batchSize},
		{auditBackupCapEnvName, &cfg.backupCap},
		{auditMaxQueueEnvName, &cfg.maxQueue},
		{auditMaxRetriesEnvName, &cfg.maxRetries},
	}
	for _, v := range ints {
		raw := os.Getenv(v.name)
		if len(raw) == 0 {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid %s: %q", v.name, raw)
		}
		*v.dst = n
	}

	return cfg, nil
}

func (cfg *auditConfig) FlushInterval() time.Duration {
	return cfg.flushInterval
}

func (cfg *auditConfig) BatchSize() int {
	return cfg.batchSize
}

func (cfg *auditConfig) BackupCap() int {
	return cfg.backupCap
}

func (cfg *auditConfig) MaxQueue() int {
	return cfg.maxQueue
}

func (cfg *auditConfig) MaxRetries() int {
	return cfg.maxRetries
}
