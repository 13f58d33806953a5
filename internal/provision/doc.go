// Package provision implements the GPU host provisioning sequence as an
// explicit step state machine.
//
// Each step carries a name and a declared criticality (fatal or advisory);
// the sequence transitions strictly forward on success, aborts on a fatal
// failure with every remaining step marked skipped, and reports a
// structured result per step. Host mutations go through the CommandRunner
// and Downloader boundaries so the ordering and failure-policy contracts
// are testable without touching a real host.
//
// There is no rollback path: once started, partial state is the
// operator's to undo, guided by the per-step results.
package provision
