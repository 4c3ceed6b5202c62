package logctx

import (
	"context"
	"loracom/internal/global"
)

// Returns child context with newTag appended to the tag list.
// Copies the list so the parent context is never mutated.
func AppendCtxTag(ctx context.Context, newTag string) (newCtx context.Context) {
	parent := GetTagList(ctx)
	tags := make([]string, len(parent), len(parent)+1)
	copy(tags, parent)
	tags = append(tags, newTag)

	newCtx = context.WithValue(ctx, global.LogTagsKey, tags)
	return
}

// Returns child context with the most specific tag removed
func RemoveLastCtxTag(ctx context.Context) (newCtx context.Context) {
	parent := GetTagList(ctx)
	if len(parent) == 0 {
		newCtx = ctx
		return
	}
	tags := make([]string, len(parent)-1)
	copy(tags, parent)

	newCtx = context.WithValue(ctx, global.LogTagsKey, tags)
	return
}

// Extracts tag list from context or returns empty list
func GetTagList(ctx context.Context) (tags []string) {
	tags, ok := ctx.Value(global.LogTagsKey).([]string)
	if !ok {
		tags = []string{}
	}
	return
}
