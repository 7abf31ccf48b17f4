package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	apperrors "taleteller/pkg/errors"
)

func init() {
	cmd := &cobra.Command{
		Use:   "image <prompt>",
		Short: "Generate a single image from a prompt",
		Args:  cobra.MinimumNArgs(1),
		Run:   runImage,
	}

	cmd.Flags().StringP("out", "o", "image.png", "Output file")

	RootCmd.AddCommand(cmd)
}

func runImage(cmd *cobra.Command, args []string) {
	out, _ := cmd.Flags().GetString("out")
	prompt := strings.Join(args, " ")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	n, err := generateImageFile(ctx, newClient(""), prompt, out)
	if err != nil {
		exitErr("image", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d bytes to %s\n", n, out)
}

type imageClient interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// generateImageFile 生成图片并写入 path，返回写入字节数
func generateImageFile(ctx context.Context, c imageClient, prompt, path string) (int, error) {
	b64, err := c.GenerateImage(ctx, prompt)
	if err != nil {
		return 0, err
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return 0, apperrors.ErrUpstreamBadReply.WithError(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, err
	}
	return len(data), nil
}
