// SPDX-License-Identifier: Unlicense OR MIT

package storagegate

import "fmt"

// Capability is an operating-system permission identifier, such as
// an Android manifest permission name.
type Capability string

// GrantResult is the outcome the operating system reports for one
// requested capability. The values match Android's PackageManager
// PERMISSION_GRANTED and PERMISSION_DENIED.
type GrantResult int32

const (
	WriteExternalStorage Capability = "android.permission.WRITE_EXTERNAL_STORAGE"
	ReadExternalStorage  Capability = "android.permission.READ_EXTERNAL_STORAGE"
)

const (
	Granted GrantResult = 0
	Denied  GrantResult = -1
)

// RequestID tags the permission request issued by a Gate. Result
// callbacks carrying any other tag belong to other permission flows.
const RequestID = 42

// CapabilityService is the operating-system capability registry.
//
// Neither method reports errors. Implementations deal with platform
// failures themselves; a failed query reports false and a failed
// request never produces a result.
type CapabilityService interface {
	// HasCapability reports whether c is currently granted.
	HasCapability(c Capability) bool
	// RequestCapabilities asks the user for caps and returns
	// immediately. The decision is delivered later, tagged with
	// requestID, to the Gate's PermissionResult method.
	RequestCapabilities(requestID int, caps []Capability)
}

func (r GrantResult) String() string {
	switch r {
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	default:
		return fmt.Sprintf("GrantResult(%d)", int32(r))
	}
}
