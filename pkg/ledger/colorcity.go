package ledger

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/colorcity-labs/colorcity-sdk-go/pkg/metadata"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	colorCityDescription = "Unique color rendition of Toronto, Canada."
	colorCityExternalURL = "https://colorcity.art/token/%d"
)

// ColorCityMetadata derives the metadata the contract renders for a token:
// a skyline tinted with a colour seeded by keccak256(id, owner).
func ColorCityMetadata(token Token) metadata.Metadata {
	id := make([]byte, 8)
	binary.BigEndian.PutUint64(id, token.ID)
	seed := crypto.Keccak256(id, token.Owner.Bytes())

	hue := int(binary.BigEndian.Uint16(seed[0:2])) % 360
	saturation := 40 + int(seed[2])%61
	lightness := 30 + int(seed[3])%41

	svg := fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 350 350">`+
			`<rect width="350" height="350" fill="hsl(%d,%d%%,%d%%)"/>`+
			`<path d="M0 350V240h40v-60h30v60h25V120h20l10-40 10 40h20v120h35v-90h45v90h30v-50h40v50h45v110z" fill="#111"/>`+
			`<text x="20" y="40" fill="#fff" font-family="monospace">COLOR CITY #%d</text></svg>`,
		hue, saturation, lightness, token.ID,
	)

	return metadata.Metadata{
		Name:        fmt.Sprintf("Color City #%d", token.ID),
		Description: colorCityDescription,
		Image:       "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg)),
		ExternalURL: fmt.Sprintf(colorCityExternalURL, token.ID),
		Attributes: []metadata.Attribute{
			{TraitType: "hue", Value: float64(hue)},
			{TraitType: "saturation", Value: float64(saturation)},
			{TraitType: "lightness", Value: float64(lightness)},
		},
	}
}
