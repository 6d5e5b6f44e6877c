// Copyright 2026 EngFlow Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package platform maps a target OS/Arch pair to the predefined
// object-like macro set a C toolchain would define when compiling for
// that target (_WIN32, __linux__, __APPLE__, __aarch64__, ...), so a host
// can seed Options.UserDefines and preprocess source as if it were being
// built for a named platform instead of hand-authoring the macro list.
//
// OS and Arch identifiers follow the constraint value names defined by
// https://github.com/bazelbuild/platforms (os/BUILD, cpu/BUILD), since
// that is the most complete and widely reused catalogue of target names
// in the Go toolchain ecosystem.
package platform

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"github.com/bnoazx005/tcpp"
)

// Platform is an OS/Arch pair identifying a compilation target.
type Platform struct {
	OS   OS
	Arch Arch
}

func (p Platform) String() string { return fmt.Sprintf("%s/%s", p.OS, p.Arch) }

// Compare orders platforms by OS first, then Arch.
func Compare(a, b Platform) int {
	if d := cmp.Compare(a.OS, b.OS); d != 0 {
		return d
	}
	return cmp.Compare(a.Arch, b.Arch)
}

// Create builds a Platform from an OS/Arch pair, resolving common aliases
// (macos -> osx, arm64 -> aarch64, amd64 -> x86_64, ...) and rejecting any
// value outside the known catalogue.
func Create(os OS, arch Arch) (Platform, error) {
	p := Platform{OS: canonicalOS(os), Arch: canonicalArch(arch)}
	if !slices.Contains(knownOSValues, p.OS) {
		return p, fmt.Errorf("unknown OS %q, expected one of %v or an alias %v", p.OS, knownOSValues, osAliases)
	}
	if !slices.Contains(knownArchValues, p.Arch) {
		return p, fmt.Errorf("unknown architecture %q, expected one of %v or an alias %v", p.Arch, knownArchValues, archAliases)
	}
	return p, nil
}

// OS identifies a target operating system.
type OS string

const (
	android    OS = "android"
	chromiumos OS = "chromiumos"
	emscripten OS = "emscripten"
	freebsd    OS = "freebsd"
	fuchsia    OS = "fuchsia"
	haiku      OS = "haiku"
	ios        OS = "ios"
	linux      OS = "linux"
	netbsd     OS = "netbsd"
	nixos      OS = "nixos"
	none       OS = "none" // bare-metal, no host OS
	openbsd    OS = "openbsd"
	osx        OS = "osx"
	qnx        OS = "qnx"
	tvos       OS = "tvos"
	uefi       OS = "uefi"
	visionos   OS = "visionos"
	vxworks    OS = "vxworks"
	wasi       OS = "wasi"
	watchos    OS = "watchos"
	windows    OS = "windows"
)

var (
	osAliases = map[string]OS{
		"macos": osx,
	}
	knownOSValues = []OS{
		android, chromiumos, emscripten, freebsd, fuchsia, haiku, ios,
		linux, netbsd, nixos, none, openbsd, osx, qnx, tvos,
		uefi, visionos, vxworks, wasi, watchos, windows,
	}
)

// Arch identifies a target instruction set architecture.
type Arch string

const (
	aarch32   Arch = "aarch32"
	aarch64   Arch = "aarch64"
	arm64_32  Arch = "arm64_32"
	arm64e    Arch = "arm64e"
	armv6m    Arch = "armv6-m"
	armv7     Arch = "armv7"
	armv7em   Arch = "armv7e-m"
	armv7k    Arch = "armv7k"
	armv7m    Arch = "armv7-m"
	armv8m    Arch = "armv8-m"
	i386      Arch = "i386"
	mips64    Arch = "mips64"
	ppc32     Arch = "ppc32"
	ppc64le   Arch = "ppc64le"
	riscv64   Arch = "riscv64"
	s390x     Arch = "s390x"
	wasm32    Arch = "wasm32"
	wasm64    Arch = "wasm64"
	x86_32    Arch = "x86_32"
	x86_64    Arch = "x86_64"
)

var (
	archAliases = map[string]Arch{
		"arm":   aarch32,
		"arm64": aarch64,
		"amd64": x86_64,
	}
	knownArchValues = []Arch{
		aarch32, aarch64, arm64_32, arm64e, armv6m, armv7, armv7em,
		armv7k, armv7m, armv8m, i386, mips64, ppc32, ppc64le,
		riscv64, s390x, wasm32, wasm64, x86_32, x86_64,
	}
)

func canonicalOS(v OS) OS {
	if c, ok := osAliases[string(v)]; ok {
		return c
	}
	return v
}

func canonicalArch(v Arch) Arch {
	if c, ok := archAliases[string(v)]; ok {
		return c
	}
	return v
}

// macroPreset is one predefined-macro entry: every name in Names is
// defined to "1" for every platform in Platforms.
type macroPreset struct {
	Names     []string
	Platforms []Platform
}

// product returns the cross product of oses and arches.
func product(oses []OS, arches []Arch) []Platform {
	out := make([]Platform, 0, len(oses)*len(arches))
	for _, o := range oses {
		for _, a := range arches {
			out = append(out, Platform{OS: o, Arch: a})
		}
	}
	return out
}

// onOS is shorthand for the cross product of a single OS against arches.
func onOS(os OS, arches ...Arch) []Platform { return product([]OS{os}, arches) }

// onArch is shorthand for the cross product of a single Arch against oses.
func onArch(arch Arch, oses ...OS) []Platform { return product(oses, []Arch{arch}) }

var (
	bsdArches    = []Arch{i386, x86_64, aarch64, riscv64, ppc64le}
	powerPCOSes  = []OS{linux, freebsd, netbsd, openbsd, qnx, vxworks}
	riscvOSes    = []OS{linux, freebsd, netbsd, openbsd, qnx, vxworks, android, chromiumos, fuchsia, nixos}
	appleMacOS   = onOS(osx, x86_64, aarch64, arm64e)
	appleIOS     = onOS(ios, aarch64, arm64e)
	appleTVOS    = onOS(tvos, aarch64)
	appleWatchOS = onOS(watchos, armv7k, arm64_32)
	appleVision  = onOS(visionos, aarch64)
	applePlatforms = slices.Concat(
		appleMacOS, appleIOS, appleTVOS, appleWatchOS, appleVision,
	)
	unixLikeOSes = []OS{linux, android, chromiumos, nixos, freebsd, netbsd, openbsd, haiku, qnx}
)

// predefinedMacros is the table a real C toolchain's predefined macro set
// is drawn from, grouped by the platform family that defines them: every
// row defines its Names to "1" across its Platforms.
var predefinedMacros = []macroPreset{
	// Windows.
	{[]string{"_WIN32"}, onOS(windows, i386, x86_32, x86_64, aarch32, aarch64)},
	{[]string{"_WIN64"}, onOS(windows, x86_64, aarch64)},
	{[]string{"__MINGW32__"}, onOS(windows, i386)},
	{[]string{"__MINGW64__"}, onOS(windows, x86_64)},
	{[]string{"_M_IX86"}, onOS(windows, i386)},
	{[]string{"_M_X64"}, onOS(windows, x86_64)},
	{[]string{"_M_ARM"}, onOS(windows, aarch32)},
	{[]string{"_M_ARM64"}, onOS(windows, aarch64)},

	// Linux, NixOS, Android, ChromeOS, and the broader Unix family.
	{[]string{"linux", "__linux__", "__linux", "__gnu_linux__"}, onOS(linux, knownArchValues...)},
	{[]string{"__NIX__"}, onOS(nixos, knownArchValues...)},
	{[]string{"__NIXOS__"}, onOS(nixos, knownArchValues...)},
	{[]string{"__ANDROID__"}, onOS(android, aarch32, aarch64, x86_32, x86_64, riscv64)},
	{[]string{"__CHROMEOS__"}, onOS(chromiumos, x86_64, aarch64, riscv64)},
	// Apple platforms don't define unix, even though they are Unix-like.
	{[]string{"unix", "__unix", "__unix__"}, product(unixLikeOSes, knownArchValues)},

	// WebAssembly (Emscripten and WASI).
	{[]string{"__EMSCRIPTEN__"}, onOS(emscripten, wasm32, wasm64)},
	{[]string{"__wasi__"}, onOS(wasi, wasm32, wasm64)},
	{[]string{"__wasm__"}, product([]OS{emscripten, wasi}, []Arch{wasm32, wasm64})},
	{[]string{"__wasm32__"}, product([]OS{emscripten, wasi}, []Arch{wasm32})},
	{[]string{"__wasm64__"}, product([]OS{emscripten, wasi}, []Arch{wasm64})},

	// BSD family.
	{[]string{"__FreeBSD__"}, onOS(freebsd, bsdArches...)},
	{[]string{"__NetBSD__"}, onOS(netbsd, bsdArches...)},
	{[]string{"__OpenBSD__"}, onOS(openbsd, bsdArches...)},

	// QNX, Haiku, Fuchsia, VxWorks, UEFI.
	{[]string{"__QNX__", "__QNXNTO__"}, onOS(qnx, aarch32, aarch64, ppc32, ppc64le, x86_32, x86_64)},
	{[]string{"__HAIKU__"}, onOS(haiku, x86_32, x86_64)},
	{[]string{"__FUCHSIA__", "__Fuchsia__"}, onOS(fuchsia, aarch64, x86_64)},
	{[]string{"__VXWORKS__", "__vxworks"}, onOS(vxworks, aarch32, aarch64, ppc32, ppc64le, x86_32, x86_64)},
	{[]string{"__UEFI__", "__EFI__"}, onOS(uefi, aarch32, aarch64, x86_32, x86_64, riscv64)},

	// Apple family: modern targets only, no 32-bit x86 or pre-ARMv7 left.
	{[]string{"__APPLE__", "__MACH__"}, applePlatforms},
	{[]string{"TARGET_OS_OSX", "TARGET_OS_MAC"}, appleMacOS},
	{[]string{"TARGET_OS_IPHONE", "TARGET_OS_IOS"}, appleIOS},
	{[]string{"TARGET_OS_TV"}, appleTVOS},
	{[]string{"TARGET_OS_WATCH"}, appleWatchOS},
	{[]string{"TARGET_OS_VISION"}, appleVision},

	// Generic CPU-only macros: any OS on a matching architecture.
	{[]string{"__x86_64__", "__x86_64", "__amd64", "__amd64__"}, onArch(x86_64, knownOSValues...)},
	{[]string{"__i386__", "__i386"}, onArch(i386, knownOSValues...)},
	{[]string{"__arm__", "__arm", "__thumb__", "__thumb"}, onArch(aarch32, knownOSValues...)},
	{[]string{"__aarch64__", "__arm64", "__arm64__"}, onArch(aarch64, knownOSValues...)},
	{[]string{"__ARM64_32__", "__ARM64_32"}, onOS(watchos, arm64_32)},
	{[]string{"__arm64e__", "__arm64e"}, onArch(arm64e, osx, ios)},

	// Fine-grained bare-metal Arm cores.
	{[]string{"__ARM_ARCH_6M__"}, onOS(none, armv6m)},
	{[]string{"__ARM_ARCH_7__", "__ARM_ARCH_7A__"}, onOS(none, armv7)},
	{[]string{"__ARM_ARCH_7M__"}, onOS(none, armv7m)},
	{[]string{"__ARM_ARCH_7EM__"}, onOS(none, armv7em)},
	{[]string{"__ARM_ARCH_8M_BASE__", "__ARM_ARCH_8M_MAIN__"}, onOS(none, armv8m)},

	// PowerPC, MIPS, s390, RISC-V.
	{[]string{"__powerpc__", "__PPC__"}, onArch(ppc32, powerPCOSes...)},
	{[]string{"__powerpc64__", "__ppc64__"}, onArch(ppc64le, powerPCOSes...)},
	{[]string{"__mips64"}, onArch(mips64, linux, netbsd, openbsd, qnx, vxworks)},
	{[]string{"__s390x__", "__s390__"}, onOS(linux, s390x)},
	{[]string{"__riscv"}, onArch(riscv64, riscvOSes...)},
}

// platformEnv is the set of predefined object-like macros for one
// platform, keyed by macro name with its integer value.
type platformEnv map[string]int

// knownPlatformEnv holds the predefined macro set for every platform
// appearing in predefinedMacros, built once at package init from the
// declarative table above.
var knownPlatformEnv = buildPlatformEnv(predefinedMacros)

func buildPlatformEnv(presets []macroPreset) map[Platform]platformEnv {
	envs := make(map[Platform]platformEnv)
	for _, preset := range presets {
		for _, p := range preset.Platforms {
			env, ok := envs[p]
			if !ok {
				env = make(platformEnv, 8)
				envs[p] = env
			}
			for _, name := range preset.Names {
				// `#define NAME` with no body is equivalent to `#define NAME 1`.
				env[name] = 1
			}
		}
	}
	return envs
}

// Defines returns the predefined macro set for p as tcpp.Define values,
// ready to pass as Options.UserDefines. The result is empty for a
// platform with no registered predefined macros.
func Defines(p Platform) []tcpp.Define {
	env := knownPlatformEnv[p]
	defines := make([]tcpp.Define, 0, len(env))
	for name, value := range env {
		defines = append(defines, tcpp.Define{Name: name, Body: strconv.Itoa(value)})
	}
	slices.SortFunc(defines, func(a, b tcpp.Define) int { return cmp.Compare(a.Name, b.Name) })
	return defines
}
