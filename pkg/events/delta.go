package events

import (
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
	jsonpatch "github.com/evanphx/json-patch/v5"
)

// OrderDelta returns the JSON merge patch that turns before into after.
// An unchanged value yields nil.
func OrderDelta(before, after any) (json.RawMessage, error) {
	orig, err := sonic.Marshal(before)
	if err != nil {
		return nil, fmt.Errorf("marshal previous state: %w", err)
	}
	mod, err := sonic.Marshal(after)
	if err != nil {
		return nil, fmt.Errorf("marshal current state: %w", err)
	}

	patch, err := jsonpatch.CreateMergePatch(orig, mod)
	if err != nil {
		return nil, fmt.Errorf("create merge patch: %w", err)
	}
	if string(patch) == "{}" {
		return nil, nil
	}
	return patch, nil
}

// ApplyDelta applies a merge patch produced by OrderDelta to a document.
func ApplyDelta(doc, delta []byte) ([]byte, error) {
	if len(delta) == 0 {
		return doc, nil
	}
	return jsonpatch.MergePatch(doc, delta)
}
