package session

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// fakeProcessor stands in for ffmpeg in tests: durations come from a
// stubbed map, Concat writes the inputs' bytes back to back and
// ExtractRange writes a small stub file. extractErr, when set, can fail
// selected cuts.
type fakeProcessor struct {
	mu         sync.Mutex
	durations  map[string]float64
	concats    [][]string
	extracts   []extractCall
	extractErr func(input, output string, start, end float64) error
}

type extractCall struct {
	input  string
	output string
	start  float64
	end    float64
}

func newFakeProcessor() *fakeProcessor {
	return &fakeProcessor{durations: make(map[string]float64)}
}

func (f *fakeProcessor) setDuration(path string, d float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.durations[path] = d
}

func (f *fakeProcessor) Duration(ctx context.Context, input string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.durations[input]
	if !ok {
		return 0, fmt.Errorf("no duration stubbed for %s", input)
	}
	return d, nil
}

func (f *fakeProcessor) Concat(ctx context.Context, inputs []string, output string) error {
	f.mu.Lock()
	f.concats = append(f.concats, append([]string(nil), inputs...))
	f.mu.Unlock()

	var data []byte
	for _, in := range inputs {
		b, err := os.ReadFile(in)
		if err != nil {
			return err
		}
		data = append(data, b...)
	}
	return os.WriteFile(output, data, 0644)
}

func (f *fakeProcessor) ExtractRange(ctx context.Context, input, output string, start, end float64) error {
	f.mu.Lock()
	f.extracts = append(f.extracts, extractCall{input: input, output: output, start: start, end: end})
	hook := f.extractErr
	f.mu.Unlock()

	if hook != nil {
		if err := hook(input, output, start, end); err != nil {
			return err
		}
	}
	return os.WriteFile(output, []byte("clip"), 0644)
}

func (f *fakeProcessor) extractCalls() []extractCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]extractCall(nil), f.extracts...)
}

// fakeArchiver records uploaded object names.
type fakeArchiver struct {
	mu      sync.Mutex
	objects []string
}

func (f *fakeArchiver) ArchiveClip(ctx context.Context, localPath, objectName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects = append(f.objects, objectName)
	return nil
}

func (f *fakeArchiver) archived() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.objects...)
}
