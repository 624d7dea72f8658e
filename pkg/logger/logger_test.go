package logger

import "testing"

func TestInit(t *testing.T) {
	for _, dev := range []bool{true, false} {
		if err := Init(dev); err != nil {
			t.Fatalf("Init(%v): %v", dev, err)
		}
		if L() == nil {
			t.Fatalf("L() returned nil after Init(%v)", dev)
		}
		L().Debug("logger test")
	}
}
