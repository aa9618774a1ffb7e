package cache

import "context"

// Disabled never stores anything; every Get misses.
type Disabled struct{}

func (Disabled) Get(context.Context, string) (string, bool) { return "", false }

func (Disabled) Set(context.Context, string, string) error { return nil }

func (Disabled) Prune(context.Context) error { return nil }

func (Disabled) Clear(context.Context) error { return nil }
