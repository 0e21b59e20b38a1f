//go:build darwin || linux

package steamworks

import (
	"fmt"
	"runtime"

	"github.com/ebitengine/purego"
)

// k_EAchievementAttribute keys understood by GetAchievementDisplayAttribute
const (
	attrName = "name"
	attrDesc = "desc"
)

// api holds the flat Steamworks functions used by the runtime. Optional
// entry points that vary between SDK releases are left nil when absent.
type api struct {
	handle uintptr

	initFlat     func(errMsg *byte) int32
	initLegacy   func() bool
	shutdown     func()
	runCallbacks func()

	userStats func() uintptr
	apps      func() uintptr

	isSubscribedApp func(apps uintptr, appID uint32) bool

	requestCurrentStats func(stats uintptr) bool
	numAchievements     func(stats uintptr) uint32
	achievementName     func(stats uintptr, index uint32) string
	displayAttribute    func(stats uintptr, name, key string) string
	getAchievement      func(stats uintptr, name string, achieved *bool) bool
	setAchievement      func(stats uintptr, name string) bool
	clearAchievement    func(stats uintptr, name string) bool
	storeStats          func(stats uintptr) bool

	setenv func(name, value string, overwrite int32) int32
}

func loadAPI(path string) (*api, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	a := &api{handle: handle}

	required := []struct {
		fptr  any
		names []string
	}{
		{&a.shutdown, []string{"SteamAPI_Shutdown"}},
		{&a.runCallbacks, []string{"SteamAPI_RunCallbacks"}},
		{&a.userStats, []string{"SteamAPI_SteamUserStats_v013", "SteamAPI_SteamUserStats_v012"}},
		{&a.apps, []string{"SteamAPI_SteamApps_v008"}},
		{&a.isSubscribedApp, []string{"SteamAPI_ISteamApps_BIsSubscribedApp"}},
		{&a.numAchievements, []string{"SteamAPI_ISteamUserStats_GetNumAchievements"}},
		{&a.achievementName, []string{"SteamAPI_ISteamUserStats_GetAchievementName"}},
		{&a.displayAttribute, []string{"SteamAPI_ISteamUserStats_GetAchievementDisplayAttribute"}},
		{&a.getAchievement, []string{"SteamAPI_ISteamUserStats_GetAchievement"}},
		{&a.setAchievement, []string{"SteamAPI_ISteamUserStats_SetAchievement"}},
		{&a.clearAchievement, []string{"SteamAPI_ISteamUserStats_ClearAchievement"}},
		{&a.storeStats, []string{"SteamAPI_ISteamUserStats_StoreStats"}},
	}
	for _, fn := range required {
		if !register(handle, fn.fptr, fn.names...) {
			_ = purego.Dlclose(handle)
			return nil, fmt.Errorf("%s does not export %s", path, fn.names[0])
		}
	}

	// Init moved to SteamAPI_InitFlat in SDK 1.58; older SDKs only have
	// SteamAPI_Init. RequestCurrentStats was dropped in 1.61.
	hasFlat := register(handle, &a.initFlat, "SteamAPI_InitFlat")
	hasLegacy := register(handle, &a.initLegacy, "SteamAPI_Init")
	if !hasFlat && !hasLegacy {
		_ = purego.Dlclose(handle)
		return nil, fmt.Errorf("%s exports no SteamAPI init function", path)
	}
	register(handle, &a.requestCurrentStats, "SteamAPI_ISteamUserStats_RequestCurrentStats")

	// The library reads SteamAppId through the C environment, which
	// os.Setenv doesn't update in a cgo-free binary.
	if libc, err := purego.Dlopen(libcName(), purego.RTLD_NOW|purego.RTLD_GLOBAL); err == nil {
		register(libc, &a.setenv, "setenv")
	}

	return a, nil
}

// register binds the first exported symbol out of names to fptr
func register(handle uintptr, fptr any, names ...string) bool {
	for _, name := range names {
		sym, err := purego.Dlsym(handle, name)
		if err != nil || sym == 0 {
			continue
		}
		purego.RegisterFunc(fptr, sym)
		return true
	}
	return false
}

// initialize starts the Steam API, returning a description on failure
func (a *api) initialize() error {
	if a.initFlat != nil {
		var msg [1024]byte
		if res := a.initFlat(&msg[0]); res != 0 {
			return fmt.Errorf("SteamAPI_InitFlat returned %d: %s", res, cString(msg[:]))
		}
		return nil
	}
	if !a.initLegacy() {
		return fmt.Errorf("SteamAPI_Init failed (is Steam running and logged in?)")
	}
	return nil
}

func (a *api) close() {
	_ = purego.Dlclose(a.handle)
}

func libcName() string {
	if runtime.GOOS == "darwin" {
		return "/usr/lib/libSystem.B.dylib"
	}
	return "libc.so.6"
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
