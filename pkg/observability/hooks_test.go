package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopCompileHooks{}
	p.OnCompileStart(ctx, "chip", 3)
	p.OnProgramComplete(ctx, "WG", 120, 4.5, time.Millisecond, nil)
	p.OnCompileComplete(ctx, "chip", 2, time.Second, errors.New("boom"))
	p.OnWrite(ctx, "chip_WG.pgm", 2048, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "surface")
	c.OnCacheMiss(ctx, "surface")
	c.OnCacheSet(ctx, "surface", 1024)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Compile().(NoopCompileHooks); !ok {
		t.Error("Compile() should return NoopCompileHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}

	customCompile := &testCompileHooks{}
	SetCompileHooks(customCompile)
	if Compile() != customCompile {
		t.Error("SetCompileHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	Reset()
	if _, ok := Compile().(NoopCompileHooks); !ok {
		t.Error("Reset() should restore NoopCompileHooks")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Reset() should restore NoopCacheHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testCompileHooks{}
	SetCompileHooks(custom)
	SetCompileHooks(nil)
	if Compile() != custom {
		t.Error("SetCompileHooks(nil) should be ignored")
	}
}

type testCompileHooks struct{ NoopCompileHooks }
type testCacheHooks struct{ NoopCacheHooks }
