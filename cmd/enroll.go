package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/enroll"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll",
	Short: "Enroll a person from an image file",
	Long: `Enroll a person from an image file without the camera.

The most prominent face in the image is cropped and stored in the enrollment
directory under the given name. An existing enrollment with the same name is
replaced.

Examples:
  face-attendance enroll --name "Jane Doe" --image ./jane.jpg`,
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().String("name", "", "Name of the person (required)")
	enrollCmd.Flags().String("image", "", "Image containing the face (required)")
	enrollCmd.MarkFlagRequired("name")
	enrollCmd.MarkFlagRequired("image")
}

func runEnroll(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.log.Sync()

	if err := a.ensureStore(); err != nil {
		return err
	}

	ctx := context.Background()
	if _, err := a.loadGallery(ctx, false); err != nil {
		return fmt.Errorf("loading known faces: %w", err)
	}

	handler := enroll.NewHandler(a.store, a.holder, a.detector, a.log)
	res, err := handler.EnrollImage(ctx, mustGetString(cmd, "name"), mustGetString(cmd, "image"))
	if err != nil {
		return err
	}

	fmt.Printf("Saved new face: %s (%s)\n", res.Name, res.Path)
	fmt.Printf("Gallery now has %d identities\n", res.Identities)
	return nil
}
