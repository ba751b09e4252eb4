package data

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"mindtree/local-app/internal/event"
	"mindtree/local-app/internal/generate"
	"mindtree/local-app/internal/history"
	"mindtree/local-app/internal/log"
	"mindtree/local-app/internal/storage"
	"mindtree/local-app/internal/tree"
)

// Preview holds generated node texts waiting to be accepted under TargetID.
type Preview struct {
	TargetID string
	Prompt   string
	Nodes    []string
}

// Generate asks the generator for up to count child texts for targetID (the selection
// when empty) and keeps them as the preview. An empty prompt uses the node's saved
// prompt. On failure the preview is cleared and the error wraps ErrGeneration.
func (e *Editor) Generate(ctx context.Context, targetID, prompt string, count int) (*Preview, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.prepare(ctx); err != nil {
		return nil, err
	}
	e.preview = nil

	if targetID == "" {
		targetID = e.selected
	}
	target := tree.Find(e.root, targetID)
	if target == nil {
		return nil, fmt.Errorf("%w: node %s does not exist", ErrValidation, targetID)
	}
	if e.gen == nil {
		return nil, fmt.Errorf("%w: no generator is configured", ErrGeneration)
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		id, err := tree.ParseID(targetID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		if prompt, err = e.store.GetNodePrompt(ctx, id); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
		}
	}
	count = generate.ClampCount(count)

	e.logger.Info(ctx, "Generating nodes", log.Fields{"nodeID": targetID, "count": count})
	resp, err := e.gen.Generate(ctx, generate.Request{
		Prompt:       prompt,
		Count:        count,
		Context:      e.selector.Build(e.root, targetID),
		SelectedText: target.Text,
	})
	if err == nil && len(generate.Truncate(resp.Nodes, count)) == 0 {
		err = generate.ErrEmptyResult
	}
	if err != nil {
		e.logger.Error(ctx, "Generation failed", log.Fields{"nodeID": targetID, "error": err})
		e.events.Publish(event.Event{Type: event.GenerationFailed, Data: event.NodeEvent{TreeID: e.treeID, NodeID: targetID, Source: e.id, Err: err}})
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	e.preview = &Preview{
		TargetID: targetID,
		Prompt:   prompt,
		Nodes:    generate.Truncate(resp.Nodes, count),
	}
	e.logger.Info(ctx, "Generation preview ready", log.Fields{"nodeID": targetID, "nodes": len(e.preview.Nodes)})
	return &Preview{TargetID: targetID, Prompt: prompt, Nodes: append([]string(nil), e.preview.Nodes...)}, nil
}

// AcceptPreview inserts the preview nodes as the last children of the target in one
// transaction, then re-reads the tree a single time. Either every node is inserted or
// none is. Each inserted node is recorded as its own AddNode and the prompt is saved on
// the target. It returns the new node ids.
func (e *Editor) AcceptPreview(ctx context.Context) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.prepare(ctx); err != nil {
		return nil, err
	}

	p := e.preview
	if p == nil {
		return nil, fmt.Errorf("%w: no generation preview", ErrValidation)
	}
	target := tree.Find(e.root, p.TargetID)
	if target == nil {
		e.preview = nil
		return nil, fmt.Errorf("%w: node %s does not exist", ErrValidation, p.TargetID)
	}
	parentID, err := tree.ParseID(p.TargetID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	e.logger.Info(ctx, "Inserting generated nodes", log.Fields{"nodeID": p.TargetID, "nodes": len(p.Nodes)})
	base := len(target.Children)
	created := make([]int64, len(p.Nodes))
	err = e.store.Tx(ctx, func(tx storage.Store) error {
		g, gctx := errgroup.WithContext(ctx)
		for i, text := range p.Nodes {
			i, text := i, text
			g.Go(func() error {
				id, err := tx.CreateNode(gctx, e.treeID, &parentID, text, base+i)
				if err != nil {
					return err
				}
				created[i] = id
				return nil
			})
		}
		return g.Wait()
	})
	if err != nil {
		e.logger.Error(ctx, "Failed to insert generated nodes", log.Fields{"nodeID": p.TargetID, "error": err})
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	if err := e.refresh(ctx); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(created))
	for _, id := range created {
		nodeID := tree.FormatID(id)
		n := tree.Find(e.root, nodeID)
		if n == nil {
			continue
		}
		_, index, _ := tree.Locate(e.root, nodeID)
		e.history.Record(history.AddNode{
			Node:          tree.Clone(n),
			ParentID:      p.TargetID,
			PrevSiblingID: tree.PrevSiblingID(e.root, nodeID),
			Index:         index,
		})
		ids = append(ids, nodeID)
	}
	e.publishNodeChanged(p.TargetID)

	e.preview = nil
	if err := e.store.UpsertNodePrompt(ctx, parentID, p.Prompt); err != nil {
		e.logger.Warn(ctx, "Failed to save prompt", log.Fields{"nodeID": p.TargetID, "error": err})
	}
	if err := e.expand(ctx, p.TargetID); err != nil {
		return ids, err
	}
	e.logger.Info(ctx, "Generated nodes inserted", log.Fields{"nodeID": p.TargetID, "nodes": len(ids)})
	return ids, nil
}

// DiscardPreview drops the generation preview.
func (e *Editor) DiscardPreview() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.preview = nil
}
