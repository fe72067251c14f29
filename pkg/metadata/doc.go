// Package metadata decodes the self-contained token URIs produced by the
// ColorCityNFT contract. A token URI is the fixed prefix
// "data:application/json;base64," followed by a base64 encoded JSON
// document:
//
//	{
//	  "name": "Color City #5",
//	  "description": "...",
//	  "image": "data:image/svg+xml;base64,...",
//	  "external_url": "https://...",
//	  "attributes": [{"trait_type": "hue", "value": 212}]
//	}
//
// Decoding is a pure transform. Failures are reported as *DecodeError so a
// caller walking many tokens can skip the bad one and keep going.
package metadata
