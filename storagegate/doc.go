// SPDX-License-Identifier: Unlicense OR MIT

/*
Package storagegate tracks whether the external storage write permission
has been granted to the program.

A Gate is created when the hosting activity starts. Its Start method
checks the operating system for the capability and, if it is missing,
issues a single asynchronous request tagged with RequestID. The user's
answer is delivered later through PermissionResult:

	g := storagegate.New(svc)
	g.Start()
	...
	// From the host runtime's permission result callback:
	g.PermissionResult(requestCode, permissions, grantResults)

Native code that needs external storage reads WriteGranted, or waits on
Done.

The Gate has two states. It starts out not granted, which covers both
"not asked yet" and "denied", and moves to granted exactly once. Nothing
moves it back. A denied request is not retried; the next activity start
asks again.

Start and PermissionResult must be called from a single goroutine. The
activity package arranges that.
*/
package storagegate
