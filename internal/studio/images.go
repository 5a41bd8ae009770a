package studio

import (
	"context"
	"fmt"

	"proprompt-mcp/common"
	"proprompt-mcp/internal/genai/gemini"
	"proprompt-mcp/internal/runner"
	"proprompt-mcp/internal/utils"
)

// GenerateThumbnailImage 为看板条目生成图片。不经过全局进度条，只切换条目自己的生成标记。
func (s *Studio) GenerateThumbnailImage(ctx context.Context, req ImageRequest) (Result[ThumbnailVariation], error) {
	req = req.withDefaults()
	if err := s.check(req); err != nil {
		return Result[ThumbnailVariation]{}, err
	}
	if !s.app.Auth.Usable() {
		return Result[ThumbnailVariation]{Outcome: s.tasks.Reauthorize(ctx, nil)}, nil
	}

	item, batch, err := s.board.begin(req.ID, false)
	if err != nil {
		return Result[ThumbnailVariation]{}, fmt.Errorf("thumbnail %s: %w", req.ID, err)
	}

	img, err := guardImage(func() (string, error) {
		return s.gateway.InvokeImage(ctx, item.Prompt, req.Quality, req.AspectRatio)
	})
	if err != nil {
		return s.imageFailed(ctx, batch, req.ID, err), nil
	}
	return s.imageDone(ctx, batch, req.ID, img, false), nil
}

// EditThumbnailImage 按编辑指令修改条目已有的图片，成功后清空编辑指令
func (s *Studio) EditThumbnailImage(ctx context.Context, req EditRequest) (Result[ThumbnailVariation], error) {
	if err := s.check(req); err != nil {
		return Result[ThumbnailVariation]{}, err
	}
	if req.Instruction != "" {
		if err := s.board.SetEditInput(req.ID, req.Instruction); err != nil {
			return Result[ThumbnailVariation]{}, fmt.Errorf("thumbnail %s: %w", req.ID, err)
		}
	}
	if !s.app.Auth.Usable() {
		return Result[ThumbnailVariation]{Outcome: s.tasks.Reauthorize(ctx, nil)}, nil
	}

	item, batch, err := s.board.begin(req.ID, true)
	if err != nil {
		return Result[ThumbnailVariation]{}, fmt.Errorf("thumbnail %s: %w", req.ID, err)
	}

	img, err := guardImage(func() (string, error) {
		return s.gateway.EditImage(ctx, item.image, item.EditInput)
	})
	if err != nil {
		return s.imageFailed(ctx, batch, req.ID, err), nil
	}
	return s.imageDone(ctx, batch, req.ID, img, true), nil
}

// guardImage panic 转为失败，条目的生成标记才能被清除
func guardImage(call func() (string, error)) (img string, err error) {
	defer func() {
		if p := recover(); p != nil {
			img, err = "", fmt.Errorf("%w: %v", runner.ErrTaskPanicked, p)
		}
	}()
	return call()
}

func (s *Studio) imageFailed(ctx context.Context, batch uint64, id string, err error) Result[ThumbnailVariation] {
	item := s.board.fail(batch, id)
	if gemini.IsAuthorizationError(err) {
		return Result[ThumbnailVariation]{Value: item, Outcome: s.tasks.Reauthorize(ctx, err)}
	}
	common.WithError(err).WithField("thumbnail", id).Error("Thumbnail image generation failed")
	return Result[ThumbnailVariation]{
		Value:   item,
		Outcome: runner.Outcome{Status: runner.Failed, Kind: runner.Classify(err), Err: err},
	}
}

func (s *Studio) imageDone(ctx context.Context, batch uint64, id, img string, edit bool) Result[ThumbnailVariation] {
	s.app.Auth.ConfirmSuccess()
	if img == "" {
		item := s.board.finish(batch, id, "", "", edit)
		if !edit {
			s.notifier.Notify(ctx, DegradedNotice)
			return Result[ThumbnailVariation]{
				Value:   item,
				Outcome: runner.Outcome{Status: runner.Succeeded, Notice: DegradedNotice},
				Empty:   true,
			}
		}
		return Result[ThumbnailVariation]{Value: item, Empty: true}
	}

	item := s.board.finish(batch, id, img, s.publish(ctx, img), edit)
	return Result[ThumbnailVariation]{Value: item}
}

// publish 上传失败时退回 data URI
func (s *Studio) publish(ctx context.Context, img string) string {
	if s.publisher == nil {
		return img
	}
	url, err := s.publisher.Publish(ctx, img)
	if err != nil {
		common.WithError(err).WithField("image", utils.TruncateForLog(img, 48)).Warn("Image publishing failed, keeping inline data")
		return img
	}
	return url
}
