package transport

import "github.com/goliatone/go-confirm/core"

var _ Service = (*core.Service)(nil)
