// Package answers holds the run-scoped record of choices collected by the
// question pipeline.
package answers

import (
	"errors"
	"fmt"
	"sort"
)

// Key is a question identifier.
type Key string

// Keys shared by the generator definitions and the code that reads answers.
const (
	Type                      Key = "type"
	SmartThingsPat            Key = "smartThingsPat"
	DisplayName               Key = "displayName"
	Name                      Key = "name"
	Description               Key = "description"
	SmartAppPermissions       Key = "smartAppPermissions"
	GenerateSmartAppFeatures  Key = "generateSmartAppFeatures"
	SmartAppDisableCustomName Key = "smartAppDisableCustomName"
	SmartAppDisableRemoveApp  Key = "smartAppDisableRemoveApp"
	SmartAppConfigureI18n     Key = "smartAppConfigureI18n"
	HostingProvider           Key = "hostingProvider"
	WebhookTargetURL          Key = "webhookTargetUrl"
	LambdaArn                 Key = "lambdaArn"
	ContextStoreProvider      Key = "contextStoreProvider"
	AwsAccessKeyID            Key = "awsAccessKeyId"
	AwsSecretAccessKey        Key = "awsSecretAccessKey"
	AwsRegion                 Key = "awsRegion"
	CheckJavaScript           Key = "checkJavaScript"
	Linter                    Key = "linter"
	Tester                    Key = "tester"
	GitInit                   Key = "gitInit"
	PkgManager                Key = "pkgManager"

	// Java generator
	ApplicationName        Key = "applicationName"
	ApplicationDescription Key = "applicationDescription"
	ClassNamePrefix        Key = "classNamePrefix"
	BasePackageName        Key = "basePackageName"
	FolderName             Key = "folderName"
	ContextStore           Key = "contextStore"
	ClientID               Key = "clientId"
	ClientSecret           Key = "clientSecret"
)

var (
	ErrAlreadySet = errors.New("answer already set")
	ErrFrozen     = errors.New("answer store is read-only")
)

// Store maps question keys to answers. A key is written once; only an
// explicit override may replace it. After Freeze the store is read-only.
type Store struct {
	values map[Key]Value
	preset map[Key]bool
	frozen bool
}

func New() *Store {
	return &Store{
		values: make(map[Key]Value),
		preset: make(map[Key]bool),
	}
}

// Set records the answer for k. Absent values are ignored so a skipped
// question leaves the key unset.
func (s *Store) Set(k Key, v Value) error {
	if s.frozen {
		return fmt.Errorf("set %q: %w", k, ErrFrozen)
	}
	if v.IsAbsent() {
		return nil
	}
	if _, ok := s.values[k]; ok {
		return fmt.Errorf("set %q: %w", k, ErrAlreadySet)
	}
	s.values[k] = v
	return nil
}

// Override records a caller-supplied answer, replacing any earlier value,
// and marks k as preset so the pipeline will not prompt for it.
func (s *Store) Override(k Key, v Value) error {
	if s.frozen {
		return fmt.Errorf("override %q: %w", k, ErrFrozen)
	}
	if v.IsAbsent() {
		delete(s.values, k)
		delete(s.preset, k)
		return nil
	}
	s.values[k] = v
	s.preset[k] = true
	return nil
}

// Preset reports whether k was supplied by Override.
func (s *Store) Preset(k Key) bool { return s.preset[k] }

func (s *Store) Lookup(k Key) (Value, bool) {
	v, ok := s.values[k]
	return v, ok
}

// Get returns the answer for k, or an absent Value.
func (s *Store) Get(k Key) Value { return s.values[k] }

func (s *Store) Has(k Key) bool {
	_, ok := s.values[k]
	return ok
}

func (s *Store) String(k Key) string { return s.values[k].Str() }

func (s *Store) Bool(k Key) bool { return s.values[k].Bool() }

func (s *Store) List(k Key) []string { return s.values[k].List() }

func (s *Store) Truthy(k Key) bool { return s.values[k].Truthy() }

// Keys returns the set keys in lexical order.
func (s *Store) Keys() []Key {
	keys := make([]Key, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (s *Store) Len() int { return len(s.values) }

func (s *Store) Freeze() { s.frozen = true }

func (s *Store) Frozen() bool { return s.frozen }

// Map returns the answers as plain Go values keyed by identifier.
func (s *Store) Map() map[string]any {
	m := make(map[string]any, len(s.values))
	for k, v := range s.values {
		m[string(k)] = v.Interface()
	}
	return m
}
