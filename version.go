package bookshelf

// Version is the release version, set at build time with
// -ldflags "-X github.com/helixml/bookshelf.Version=...".
var Version = "dev"
