package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/gallery"
)

var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Load the enrollment directory and list known people",
	Long: `Encode every image of the enrollment directory and list the resulting
identities in matching order.

With --verify, every identity is matched against the whole gallery. People
whose faces are within the threshold of someone else are reported, since the
first one in matching order always wins.

Examples:
  face-attendance gallery
  face-attendance gallery --verify --json`,
	RunE: runGallery,
}

func init() {
	rootCmd.AddCommand(galleryCmd)

	galleryCmd.Flags().Bool("verify", false, "Report identities that are ambiguous within the threshold")
	galleryCmd.Flags().Bool("json", false, "Output as JSON instead of text")
}

// GalleryIdentity is one identity in the command output.
type GalleryIdentity struct {
	Name      string   `json:"name"`
	File      string   `json:"file"`
	MatchesAs string   `json:"matches_as,omitempty"`
	Ambiguous []string `json:"ambiguous_with,omitempty"`
}

// verifyGallery matches every entry against the gallery.
func verifyGallery(g *gallery.Gallery, threshold float64) []GalleryIdentity {
	entries := g.Entries()
	out := make([]GalleryIdentity, 0, len(entries))
	for _, e := range entries {
		id := GalleryIdentity{Name: e.Name, File: filepath.Base(e.Path)}
		m := g.Match(e.Embedding, threshold)
		if best, ok := m.Best(); ok {
			id.MatchesAs = best.Name
		}
		for _, c := range m.Candidates {
			if c.Name != e.Name {
				id.Ambiguous = append(id.Ambiguous, c.Name)
			}
		}
		out = append(out, id)
	}
	return out
}

func runGallery(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")
	verify := mustGetBool(cmd, "verify")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.log.Sync()

	g, err := a.loadGallery(context.Background(), !jsonOutput)
	if err != nil {
		return fmt.Errorf("loading known faces: %w", err)
	}

	identities := []GalleryIdentity{}
	if verify {
		identities = verifyGallery(g, a.cfg.Recognition.DistanceThreshold)
	} else {
		for _, e := range g.Entries() {
			identities = append(identities, GalleryIdentity{Name: e.Name, File: filepath.Base(e.Path)})
		}
	}

	stored, err := a.store.Names()
	if err != nil {
		return err
	}
	var skipped []string
	for _, name := range stored {
		if _, ok := g.Lookup(name); !ok {
			skipped = append(skipped, name)
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(identities)
	}

	fmt.Printf("%d known people in %s\n", g.Len(), a.cfg.Store.KnownFacesDir)
	for i, id := range identities {
		fmt.Printf("  %3d. %s (%s)\n", i+1, id.Name, id.File)
		if id.MatchesAs != "" && id.MatchesAs != id.Name {
			fmt.Printf("       WARNING: recognized as %s\n", id.MatchesAs)
		}
		if len(id.Ambiguous) > 0 {
			fmt.Printf("       close to: %v\n", id.Ambiguous)
		}
	}
	if len(skipped) > 0 {
		fmt.Printf("\nSkipped (no face or unreadable): %v\n", skipped)
	}
	return nil
}
