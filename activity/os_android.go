// SPDX-License-Identifier: Unlicense OR MIT

package activity

/*
#include "jni_android.h"
*/
import "C"

import (
	"fmt"
	"log/slog"
	"sync"

	"gioui.org/app"
	"gioui.org/io/event"
	"git.wow.st/gmp/jni"

	"github.com/twobit/fakesid/storagegate"
)

var android struct {
	mu sync.Mutex
	// view is a global reference to the android.view.View of the
	// latest app.ViewEvent, or 0.
	view jni.Object
	// pending holds a request issued before a view was attached.
	pending *pendingRequest
	shell   *Shell
}

type pendingRequest struct {
	id   int
	caps []storagegate.Capability
}

// AndroidService is the CapabilityService of the running Android
// application. Requests are shown by a fragment attached to the
// activity of the shell's window.
type AndroidService struct {
	log *slog.Logger
}

// DefaultService returns the capability service for the current
// platform.
func DefaultService(l *slog.Logger) storagegate.CapabilityService {
	return &AndroidService{log: l}
}

func (a *AndroidService) attach(s *Shell) {
	android.mu.Lock()
	defer android.mu.Unlock()
	android.shell = s
}

func (a *AndroidService) HasCapability(c storagegate.Capability) bool {
	var granted bool
	err := jni.Do(jni.JVMFor(app.JavaVM()), func(env jni.Env) error {
		ctx := jni.Object(app.AppContext())
		cls, err := jni.LoadClass(env, jni.ClassLoaderFor(env, ctx), fragmentClass)
		if err != nil {
			return fmt.Errorf("load %s: %w", fragmentClass, err)
		}
		check := jni.GetStaticMethodID(env, cls, fragmentCheck, fragmentCheckSig)
		res, err := jni.CallStaticIntMethod(env, cls, check, jni.Value(ctx), jni.Value(jni.JavaString(env, string(c))))
		if err != nil {
			return fmt.Errorf("check %s: %w", c, err)
		}
		granted = storagegate.GrantResult(res) == storagegate.Granted
		return nil
	})
	if err != nil {
		a.log.Warn("capability check failed", "capability", string(c), "err", err)
		return false
	}
	return granted
}

func (a *AndroidService) RequestCapabilities(requestID int, caps []storagegate.Capability) {
	android.mu.Lock()
	view := android.view
	if view == 0 {
		android.pending = &pendingRequest{id: requestID, caps: caps}
		android.mu.Unlock()
		return
	}
	android.mu.Unlock()
	if err := requestFromView(view, requestID, caps); err != nil {
		a.log.Warn("permission request failed", "request", requestID, "err", err)
	}
}

func requestFromView(view jni.Object, requestID int, caps []storagegate.Capability) error {
	return jni.Do(jni.JVMFor(app.JavaVM()), func(env jni.Env) error {
		loader := jni.ClassLoaderFor(env, jni.Object(app.AppContext()))
		cls, err := jni.LoadClass(env, loader, fragmentClass)
		if err != nil {
			return fmt.Errorf("load %s: %w", fragmentClass, err)
		}
		perms := jni.NewObjectArray(env, jni.Size(len(caps)), jni.FindClass(env, "java/lang/String"), 0)
		for i, c := range caps {
			if err := jni.SetObjectArrayElement(env, perms, jni.Size(i), jni.Object(jni.JavaString(env, string(c)))); err != nil {
				return err
			}
		}
		request := jni.GetStaticMethodID(env, cls, fragmentRequest, fragmentRequestSig)
		return jni.CallStaticVoidMethod(env, cls, request, jni.Value(view), jni.Value(perms), jni.Value(requestID))
	})
}

func (s *Shell) platformEvent(e event.Event) {
	ve, ok := e.(app.ViewEvent)
	if !ok {
		return
	}
	android.mu.Lock()
	defer android.mu.Unlock()
	err := jni.Do(jni.JVMFor(app.JavaVM()), func(env jni.Env) error {
		if android.view != 0 {
			jni.DeleteGlobalRef(env, android.view)
			android.view = 0
		}
		if ve.View != 0 {
			android.view = jni.NewGlobalRef(env, jni.Object(ve.View))
		}
		return nil
	})
	if err != nil {
		s.log.Warn("attach view failed", "err", err)
		return
	}
	s.viewChanged(android.view != 0)
	if p := android.pending; p != nil && android.view != 0 {
		android.pending = nil
		if err := requestFromView(android.view, p.id, p.caps); err != nil {
			s.log.Warn("permission request failed", "request", p.id, "err", err)
		}
	}
}

func (s *Shell) destroyPlatform() {
	android.mu.Lock()
	defer android.mu.Unlock()
	if android.view == 0 {
		return
	}
	jni.Do(jni.JVMFor(app.JavaVM()), func(env jni.Env) error {
		jni.DeleteGlobalRef(env, android.view)
		return nil
	})
	android.view = 0
}

//export Java_org_twobit_fakesid_StorageGateFragment_onPermissionResult
func Java_org_twobit_fakesid_StorageGateFragment_onPermissionResult(env *C.JNIEnv, class C.jclass, requestCode C.jint, permissions C.jobjectArray, grantResults C.jintArray) {
	e := ResultEvent{RequestID: int(requestCode)}
	for i, n := C.jsize(0), C.fakesid_arrayLength(env, C.jarray(permissions)); i < n; i++ {
		str := C.fakesid_stringArrayElement(env, permissions, i)
		chars := C.fakesid_stringChars(env, str)
		e.Capabilities = append(e.Capabilities, storagegate.Capability(C.GoString(chars)))
		C.fakesid_releaseString(env, str, chars)
	}
	for i, n := C.jsize(0), C.fakesid_arrayLength(env, C.jarray(grantResults)); i < n; i++ {
		e.Results = append(e.Results, storagegate.GrantResult(C.fakesid_intArrayElement(env, grantResults, i)))
	}
	android.mu.Lock()
	s := android.shell
	android.mu.Unlock()
	if s != nil {
		s.Deliver(e)
	}
}

// fakesid_write_granted reports to native code whether external
// storage may be written.
//
//export fakesid_write_granted
func fakesid_write_granted() C.int {
	android.mu.Lock()
	s := android.shell
	android.mu.Unlock()
	if s == nil || !s.Gate().WriteGranted() {
		return 0
	}
	return 1
}
