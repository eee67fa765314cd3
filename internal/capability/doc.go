// Package capability is the boundary to the AI model that reads documents.
//
// A Capability takes one image and one instruction and returns text, JSON
// matching a requested Schema, or an image. Providers:
//
//   - gemini: Google Gemini through google.golang.org/genai. Supports
//     response schemas and image output.
//   - openai, ollama, anthropic, mistral: vision chat models through
//     langchaingo. Schemas are sent as JSON mode plus the schema text;
//     image output is rejected.
//   - tesseract: local OCR. Plain text only; the instruction is ignored.
//
// Every call makes a single attempt. Failures are returned as
// *CapabilityError so callers can show the message and let the user retry.
// Invalid image payloads surface as *imaging.DecodeError.
package capability
