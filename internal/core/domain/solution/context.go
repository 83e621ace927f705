package solution

// HostContext carries what the host runner injects into install and run:
// the read-only package directory, the managed app directory and the
// parsed arguments.
type HostContext struct {
	PackagePath string
	AppPath     string
	Args        Args
}
