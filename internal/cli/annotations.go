package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	core "github.com/ashwinyue/next-label/internal/annotation"
	"github.com/ashwinyue/next-label/internal/errs"
	"github.com/ashwinyue/next-label/internal/scaler"
	"github.com/ashwinyue/next-label/internal/transport"
)

// shapeOps 类型擦除后的仓库操作，命令按 --shape 分派
type shapeOps struct {
	// pixels 非 nil 时把归一化坐标换算为像素坐标
	list       func(ctx context.Context, tr transport.Transport, projectID, exampleID int64, pixels *scaler.Scaler2D) ([]core.Record, error)
	delete     func(ctx context.Context, tr transport.Transport, projectID, exampleID, id int64) error
	bulkDelete func(ctx context.Context, tr transport.Transport, projectID, exampleID int64, ids []int64) error
	clear      func(ctx context.Context, tr transport.Transport, projectID, exampleID int64) error
}

func opsFor[T core.Annotation](shape core.Shape[T], toPixels func(*scaler.Scaler2D, T) T) shapeOps {
	return shapeOps{
		list: func(ctx context.Context, tr transport.Transport, projectID, exampleID int64, pixels *scaler.Scaler2D) ([]core.Record, error) {
			if pixels != nil && toPixels == nil {
				return nil, errs.InvalidArgument("--image-size only applies to image coordinates, not %s", shape.Fragment)
			}
			items, err := core.NewRepository(tr, shape).List(ctx, projectID, exampleID)
			if err != nil {
				return nil, err
			}
			recs := make([]core.Record, 0, len(items))
			for _, item := range items {
				if pixels != nil {
					item = toPixels(pixels, item)
				}
				recs = append(recs, shape.Encode(item))
			}
			return recs, nil
		},
		delete: func(ctx context.Context, tr transport.Transport, projectID, exampleID, id int64) error {
			return core.NewRepository(tr, shape).Delete(ctx, projectID, exampleID, id)
		},
		bulkDelete: func(ctx context.Context, tr transport.Transport, projectID, exampleID int64, ids []int64) error {
			return core.NewRepository(tr, shape).BulkDelete(ctx, projectID, exampleID, ids)
		},
		clear: func(ctx context.Context, tr transport.Transport, projectID, exampleID int64) error {
			return core.NewRepository(tr, shape).Clear(ctx, projectID, exampleID)
		},
	}
}

var shapes = map[string]shapeOps{
	"categories": opsFor(core.Categories, nil),
	"texts":      opsFor(core.Texts, nil),
	"spans":      opsFor(core.Spans, nil),
	"relations":  opsFor(core.Relations, nil),
	"bboxes":     opsFor(core.BoundingBoxes, (*scaler.Scaler2D).InverseBox),
	"segments":   opsFor(core.Segmentations, segmentToPixels),
	"seq2seq":    opsFor(core.Seq2seqs, nil),
}

func segmentToPixels(s *scaler.Scaler2D, seg *core.Segmentation) *core.Segmentation {
	out := *seg
	out.Points = s.InversePoints(seg.Points)
	return &out
}

// parseImageSize 解析 WIDTHxHEIGHT，返回对应的像素缩放器
func parseImageSize(v string) (*scaler.Scaler2D, error) {
	w, h, ok := strings.Cut(strings.ToLower(v), "x")
	if !ok {
		return nil, errs.InvalidArgument("image size %q is not WIDTHxHEIGHT", v)
	}
	width, err := strconv.ParseFloat(w, 64)
	if err != nil {
		return nil, errs.InvalidArgument("invalid image width %q", w)
	}
	height, err := strconv.ParseFloat(h, 64)
	if err != nil {
		return nil, errs.InvalidArgument("invalid image height %q", h)
	}
	s := scaler.New2D()
	if err := s.FitImage(width, height); err != nil {
		return nil, err
	}
	return s, nil
}

func shapeNames() []string {
	names := make([]string, 0, len(shapes))
	for name := range shapes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type annotationFlags struct {
	shape   string
	example int64
}

func (f *annotationFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.shape, "shape", "", fmt.Sprintf("Annotation shape, one of %v", shapeNames()))
	cmd.Flags().Int64Var(&f.example, "example", 0, "Example ID")
	_ = cmd.MarkFlagRequired("shape")
	_ = cmd.MarkFlagRequired("example")
}

func (f *annotationFlags) resolve(opts *Options) (shapeOps, error) {
	if err := opts.requireProject(); err != nil {
		return shapeOps{}, err
	}
	ops, ok := shapes[f.shape]
	if !ok {
		return shapeOps{}, errs.InvalidArgument("unknown shape %q, want one of %v", f.shape, shapeNames())
	}
	if f.example <= 0 {
		return shapeOps{}, errs.InvalidArgument("--example must be positive")
	}
	return ops, nil
}

func annotationsCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "annotations",
		Aliases: []string{"ann"},
		Short:   "List and delete annotations of an example",
	}
	cmd.AddCommand(
		annotationsListCommand(opts),
		annotationsDeleteCommand(opts),
		annotationsClearCommand(opts),
	)
	return cmd
}

func annotationsListCommand(opts *Options) *cobra.Command {
	var (
		f         annotationFlags
		imageSize string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List annotations of one shape",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := f.resolve(opts)
			if err != nil {
				return err
			}
			var pixels *scaler.Scaler2D
			if imageSize != "" {
				if pixels, err = parseImageSize(imageSize); err != nil {
					return err
				}
			}
			recs, err := ops.list(cmd.Context(), opts.transport(), opts.Project, f.example, pixels)
			if err != nil {
				return err
			}
			return opts.render(recs)
		},
	}
	f.bind(cmd)
	cmd.Flags().StringVar(&imageSize, "image-size", "", "Print boxes and polygons in pixels of a WIDTHxHEIGHT image")
	return cmd
}

func annotationsDeleteCommand(opts *Options) *cobra.Command {
	var f annotationFlags
	cmd := &cobra.Command{
		Use:   "delete ID [ID...]",
		Short: "Delete annotations by ID; already deleted IDs are ignored",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := f.resolve(opts)
			if err != nil {
				return err
			}
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := strconv.ParseInt(arg, 10, 64)
				if err != nil || id <= 0 {
					return errs.InvalidArgument("invalid annotation id %q", arg)
				}
				ids = append(ids, id)
			}
			tr := opts.transport()
			if len(ids) == 1 {
				return ops.delete(cmd.Context(), tr, opts.Project, f.example, ids[0])
			}
			return ops.bulkDelete(cmd.Context(), tr, opts.Project, f.example, ids)
		},
	}
	f.bind(cmd)
	return cmd
}

func annotationsClearCommand(opts *Options) *cobra.Command {
	var f annotationFlags
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every annotation of one shape on the example",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := f.resolve(opts)
			if err != nil {
				return err
			}
			return ops.clear(cmd.Context(), opts.transport(), opts.Project, f.example)
		},
	}
	f.bind(cmd)
	return cmd
}
