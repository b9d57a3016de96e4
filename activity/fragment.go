// SPDX-License-Identifier: Unlicense OR MIT

package activity

// StorageGateFragment.java, bundled with this package, shows permission
// prompts on Android. Its entry points, as looked up through JNI:
const (
	fragmentClass = "org.twobit.fakesid.StorageGateFragment"
	// check(Context, String) int reports PERMISSION_GRANTED below
	// Android M, where permissions are granted at install time.
	fragmentCheck    = "check"
	fragmentCheckSig = "(Landroid/content/Context;Ljava/lang/String;)I"
	// request(View, String[], int) asks from the view's activity.
	fragmentRequest    = "request"
	fragmentRequestSig = "(Landroid/view/View;[Ljava/lang/String;I)V"
)
