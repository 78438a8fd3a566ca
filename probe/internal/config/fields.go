// Copyright (C) 2017 Librato, Inc. All rights reserved.

package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/appoptics/probers-go/probe/internal/log"
	"github.com/pkg/errors"
)

// eachField calls fn for every settable leaf field of the struct v points
// to. Nested struct pointers are allocated when nil and walked.
func eachField(v interface{}, fn func(f reflect.StructField, fv reflect.Value)) {
	sv := reflect.Indirect(reflect.ValueOf(v))
	st := sv.Type()
	for i := 0; i < st.NumField(); i++ {
		f, fv := st.Field(i), sv.Field(i)
		if !fv.CanSet() {
			continue
		}
		if f.Type.Kind() == reflect.Ptr && f.Type.Elem().Kind() == reflect.Struct {
			if fv.IsNil() {
				fv.Set(reflect.New(f.Type.Elem()))
			}
			eachField(fv.Interface(), fn)
			continue
		}
		fn(f, fv)
	}
}

// setDefaults assigns every field the value of its default tag.
func setDefaults(v interface{}) {
	eachField(v, func(f reflect.StructField, fv reflect.Value) {
		fv.Set(parseValue(f.Tag.Get("default"), f.Type))
	})
}

// loadEnvs assigns every field whose env variable is set and not empty.
func loadEnvs(v interface{}) {
	eachField(v, func(f reflect.StructField, fv reflect.Value) {
		env := f.Tag.Get("env")
		if env == "" {
			return
		}
		if s := os.Getenv(env); s != "" {
			fv.Set(parseValue(s, f.Type))
		}
	})
}

// defaultOf returns the default tag of the named field of the struct v
// points to.
func defaultOf(v interface{}, name string) string {
	f, ok := reflect.Indirect(reflect.ValueOf(v)).Type().FieldByName(name)
	if !ok {
		panic(fmt.Sprintf("invalid field: %s", name))
	}
	return f.Tag.Get("default")
}

// parseValue converts s to typ. Malformed input is logged and yields the
// zero value.
func parseValue(s string, typ reflect.Type) reflect.Value {
	s = strings.TrimSpace(s)
	v := reflect.New(typ).Elem()

	switch typ.Kind() {
	case reflect.String:
		v.SetString(s)
	case reflect.Int, reflect.Int64:
		if s == "" {
			break
		}
		n, err := strconv.ParseInt(s, 10, typ.Bits())
		if err != nil {
			log.Warningf("Ignore invalid %v value: %s", typ.Kind(), s)
			break
		}
		v.SetInt(n)
	case reflect.Bool:
		if s == "" {
			break
		}
		b, err := parseBool(s)
		if err != nil {
			log.Warningf("Ignore invalid bool value: %s", errors.Wrap(err, s))
		}
		v.SetBool(b)
	default:
		panic(fmt.Sprintf("Unsupported kind: %v, val: %s", typ.Kind(), s))
	}
	return v
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "enabled", "on", "1":
		return true, nil
	case "no", "false", "disabled", "off", "0":
		return false, nil
	}
	return false, errors.New("cannot convert input to bool")
}

// changedItems describes every field of changed that differs from base,
// with the service key masked.
func changedItems(base, changed interface{}) []string {
	bv := reflect.Indirect(reflect.ValueOf(base))
	cv := reflect.Indirect(reflect.ValueOf(changed))

	var items []string
	for i := 0; i < cv.NumField(); i++ {
		f := cv.Type().Field(i)
		if f.PkgPath != "" {
			continue
		}
		b, c := bv.Field(i), cv.Field(i)
		if f.Type.Kind() == reflect.Ptr {
			if !b.IsNil() && !c.IsNil() {
				items = append(items, changedItems(b.Interface(), c.Interface())...)
			}
			continue
		}
		if b.Interface() == c.Interface() {
			continue
		}
		val := fmt.Sprint(c.Interface())
		if f.Name == "ServiceKey" {
			val = MaskServiceKey(val)
		}
		items = append(items, fmt.Sprintf("%s(%s)=%s (default=%v)",
			f.Name, f.Tag.Get("env"), val, b.Interface()))
	}
	return items
}
