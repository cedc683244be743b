package common

// Version is the application version, overridden at build time via
// -ldflags "-X github.com/chenruby1109/factor-ai/internal/common.Version=..."
var Version = "dev"
