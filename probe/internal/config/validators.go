// Copyright (C) 2017 Librato, Inc. All rights reserved.

package config

import (
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/appoptics/probers-go/probe/internal/log"
	"github.com/gobwas/glob"
)

// Backend types
const (
	BackendNone        = "none"
	BackendUDP         = "udp"
	BackendCollector   = "collector"
	BackendOtel        = "otel"
	BackendOpenTracing = "opentracing"
)

// Event encodings of the udp backend
const (
	EncodingBSON    = "bson"
	EncodingMsgpack = "msgpack"
)

// InvalidEnv returns the message logged when a setting is discarded.
func InvalidEnv(env string, val string) string {
	return fmt.Sprintf("invalid env, discarded - %s: %q", env, val)
}

// MissingEnv returns the message logged when a required setting is absent.
func MissingEnv(env string) string {
	return fmt.Sprintf("missing env - %s", env)
}

var (
	// IsValidServiceKey reports whether s looks like "token:name", with a
	// 64-character alphanumeric token and a name of 1 to 255 characters.
	IsValidServiceKey = regexp.MustCompile(`^[a-zA-Z0-9]{64}:.{1,255}$`).MatchString

	spaces       = regexp.MustCompile(`\s`)
	invalidChars = regexp.MustCompile(`[^a-z0-9.:_-]`)
)

// ToServiceKey normalizes the service name part of a key: it is lowercased,
// spaces become hyphens and characters outside [a-z0-9.:_-] are removed.
// The token is left untouched.
func ToServiceKey(s string) string {
	token, name, ok := strings.Cut(s, ":")
	if !ok {
		return s
	}
	name = spaces.ReplaceAllString(strings.ToLower(name), "-")
	return token + ":" + invalidChars.ReplaceAllString(name, "")
}

// MaskServiceKey hides all but the first and last 4 characters of the
// token, e.g. "ae38****...****9217:go".
func MaskServiceKey(key string) string {
	const keep = 4
	token, name, hasName := strings.Cut(key, ":")
	if len(token) <= 2*keep {
		return key
	}
	masked := token[:keep] + strings.Repeat("*", len(token)-2*keep) + token[len(token)-keep:]
	if !hasName {
		return masked
	}
	return masked + ":" + name
}

// IsValidHost reports whether addr is empty or a host:port with a port in
// 1-65535.
func IsValidHost(addr string) bool {
	if addr == "" {
		return true
	}
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	p, err := strconv.Atoi(port)
	return err == nil && p > 0 && p <= 65535
}

// IsValidFile reports whether file is empty or an existing regular file.
func IsValidFile(file string) bool {
	if file == "" {
		return true
	}
	fi, err := os.Stat(file)
	return err == nil && fi.Mode().IsRegular()
}

// IsValidBackend reports whether t names a tracer backend, or a
// comma-separated list of them.
func IsValidBackend(t string) bool {
	for _, kind := range Backends(t) {
		switch kind {
		case BackendNone, BackendUDP, BackendCollector, BackendOtel, BackendOpenTracing:
		default:
			return false
		}
	}
	return true
}

// Backends splits a backend list into normalized kinds.
func Backends(t string) []string {
	kinds := strings.Split(normalize(t), ",")
	for i, k := range kinds {
		kinds[i] = strings.TrimSpace(k)
	}
	return kinds
}

// HasBackend reports whether the backend list t includes kind.
func HasBackend(t, kind string) bool {
	for _, k := range Backends(t) {
		if k == kind {
			return true
		}
	}
	return false
}

// IsValidEncoding reports whether e names a udp event encoding.
func IsValidEncoding(e string) bool {
	switch normalize(e) {
	case EncodingBSON, EncodingMsgpack:
		return true
	}
	return false
}

// IsValidProbePattern reports whether p is a well-formed provider:probe glob.
func IsValidProbePattern(p string) bool {
	if p == "" {
		return false
	}
	_, err := glob.Compile(p)
	return err == nil
}

// ToProbePatterns splits a comma-separated pattern list, dropping blank and
// malformed entries.
func ToProbePatterns(s string) []string {
	var patterns []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !IsValidProbePattern(p) {
			log.Warning(InvalidEnv("EnabledProbes", p))
			continue
		}
		patterns = append(patterns, p)
	}
	return patterns
}
