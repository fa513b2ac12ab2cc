package bootstrap

import "context"

type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

// AuditLogger menerima jejak kejadian operasional tingkat proses
// (start/stop, konfigurasi). Jejak bisnis per-request ada di zap biasa.
type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}
