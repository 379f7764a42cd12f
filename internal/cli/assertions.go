package cli

import (
	"github.com/tinoosan/txengine/internal/httpapi"
	"github.com/tinoosan/txengine/internal/service/replay"
	"github.com/tinoosan/txengine/internal/storage/memory"
)

// Compile-time interface assertions documenting which interfaces the stores satisfy.
var (
	_ replay.Store         = (*memory.Store)(nil)
	_ httpapi.Reader       = (*memory.Store)(nil)
	_ httpapi.ReadyChecker = (*memory.Store)(nil)
)
