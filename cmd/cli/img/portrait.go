// Package img generates suspect portraits for the case.
package img

import (
	"fmt"
	"image/png"
	"log/slog"
	"os"

	"github.com/myrjola/whodunit/cmd/cli/cliapp"
	"github.com/myrjola/whodunit/internal/casefile"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "img",
	Title: "Image operations",
}

func init() {
	Portrait.Flags().String("out", "", "path to generated image file, defaults to <suspect id>.png")
}

// portraitPrompt describes the suspect without revealing the role.
func portraitPrompt(c *casefile.Case, profile models.EntityProfile) string {
	look := profile.Portrait
	if look == "" {
		look = profile.Persona
	}
	return fmt.Sprintf("A moody 1920s murder mystery portrait of %s, a character in %q. %s "+
		"Oil painting, muted colors, dramatic side lighting, no text.", profile.Name, c.Title(), look)
}

var Portrait = &cobra.Command{
	Use:     "portrait <suspect id>",
	GroupID: "img",
	Short:   "Generate a suspect portrait",
	Long:    "Generates a portrait of a suspect of the case with the configured image model",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cliapp.Load()
		if err != nil {
			return err
		}
		profile, ok := app.Case.Suspect(args[0])
		if !ok {
			return errors.New("unknown suspect", slog.String("suspect_id", args[0]))
		}
		outPath, err := cmd.Flags().GetString("out")
		if err != nil {
			return errors.Wrap(err, "read out flag")
		}
		if outPath == "" {
			outPath = profile.ID + ".png"
		}

		img, err := app.Client.GenerateImage(cmd.Context(), app.Config.Models.ImageModel, portraitPrompt(app.Case, profile))
		if err != nil {
			return errors.Wrap(err, "generate portrait", slog.String("suspect_id", profile.ID))
		}
		file, err := os.Create(outPath)
		if err != nil {
			return errors.Wrap(err, "create image file", slog.String("path", outPath))
		}
		defer func() {
			_ = file.Close()
		}()
		if err = png.Encode(file, img); err != nil {
			return errors.Wrap(err, "encode png", slog.String("path", outPath))
		}
		app.Logger.LogAttrs(cmd.Context(), slog.LevelInfo, "portrait saved",
			slog.String("suspect_id", profile.ID), slog.String("path", outPath))
		return nil
	},
}
