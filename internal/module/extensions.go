package module

import (
	"vellum/internal/ext/crypto"
	"vellum/internal/ext/db"
	"vellum/internal/ext/humanize"
	"vellum/internal/ext/net"
	"vellum/internal/ext/uuidext"
)

// RegisterBuiltinExtensions wires the built-in native extensions (§4.12)
// into l, available to `import "db"` etc. without touching the filesystem
// search path — the same registration point a genuinely dynamically-loaded
// .so extension would use via RegisterNative.
func RegisterBuiltinExtensions(l *Loader) {
	l.RegisterNative("db", db.Register)
	l.RegisterNative("net", net.Register)
	l.RegisterNative("crypto", crypto.Register)
	l.RegisterNative("uuid", uuidext.Register)
	l.RegisterNative("humanize", humanize.Register)
}
