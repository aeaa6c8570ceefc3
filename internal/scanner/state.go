// SPDX-License-Identifier: MIT

package scanner

// State is a scan session's lifecycle position.
type State int

const (
	StateIdle State = iota
	StateCheckingPermission
	StateScanning
	StateProcessing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCheckingPermission:
		return "checking_permission"
	case StateScanning:
		return "scanning"
	case StateProcessing:
		return "processing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
