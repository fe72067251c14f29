package gallery

import (
	"fmt"
	"io"
	"strings"

	"github.com/colorcity-labs/colorcity-sdk-go/pkg/collection"
	"github.com/colorcity-labs/colorcity-sdk-go/pkg/ledger"
	"github.com/colorcity-labs/colorcity-sdk-go/pkg/metadata"
	"github.com/pterm/pterm"
)

// EmptyMessage is shown in place of the gallery when an owner holds nothing.
const EmptyMessage = "No NFTs found"

const maxImageWidth = 48

// Render writes the collection as a terminal table, newest token first.
func Render(writer io.Writer, result collection.Collection) error {
	title := fmt.Sprintf("Collection of %s", result.Owner.Hex())
	if result.Balance != nil {
		title = fmt.Sprintf("%s (balance %s)", title, result.Balance)
	}
	if _, err := fmt.Fprint(writer, pterm.DefaultSection.Sprintln(title)); err != nil {
		return err
	}

	if result.Len() == 0 {
		if _, err := fmt.Fprintln(writer, pterm.Info.Sprint(EmptyMessage)); err != nil {
			return err
		}
		return renderFailures(writer, result.Failures)
	}

	data := pterm.TableData{{"Token Id", "Name", "Description", "Image", "Attributes"}}
	for _, item := range result.Items {
		data = append(data, []string{
			item.ID.String(),
			item.Name,
			item.Description,
			shortImage(item.Image),
			formatAttributes(item.Attributes),
		})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithHeaderRowSeparator("-").WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("failed to render gallery: %w", err)
	}
	if _, err := fmt.Fprintln(writer, table); err != nil {
		return err
	}
	return renderFailures(writer, result.Failures)
}

// RenderMint writes the outcome of a successful mint.
func RenderMint(writer io.Writer, response ledger.MintResponse) error {
	lines := []string{
		pterm.Success.Sprintf("Minted Color City #%s to %s", response.TokenID, response.Owner.Hex()),
		fmt.Sprintf("  transaction: %s", response.TransactionHash.Hex()),
		fmt.Sprintf("  block:       %d %s", response.BlockNumber, response.BlockHash.Hex()),
	}
	_, err := fmt.Fprintln(writer, strings.Join(lines, "\n"))
	return err
}

func renderFailures(writer io.Writer, failures []collection.Failure) error {
	for _, failure := range failures {
		label := fmt.Sprintf("index %d", failure.Index)
		if failure.TokenID != nil {
			label = fmt.Sprintf("token %s", failure.TokenID)
		}
		if _, err := fmt.Fprintln(writer, pterm.Warning.Sprintf("skipped %s: %v", label, failure.Err)); err != nil {
			return err
		}
	}
	return nil
}

func shortImage(image string) string {
	if strings.HasPrefix(image, "data:") {
		mediaType, _, _ := strings.Cut(strings.TrimPrefix(image, "data:"), ",")
		mediaType, _, _ = strings.Cut(mediaType, ";")
		return fmt.Sprintf("data:%s (%d bytes)", mediaType, len(image))
	}
	if len(image) > maxImageWidth {
		return image[:maxImageWidth-3] + "..."
	}
	return image
}

func formatAttributes(attributes []metadata.Attribute) string {
	parts := make([]string, 0, len(attributes))
	for _, attribute := range attributes {
		parts = append(parts, attribute.TraitType+"="+attribute.String())
	}
	return strings.Join(parts, " ")
}
