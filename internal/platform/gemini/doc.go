// Package gemini provides an implementation of the translation.Translator
// interface that uses Google's Gemini API as the translation backend.
//
// This package is an infrastructure adapter in the hexagonal architecture,
// connecting the application's domain logic to Google's external Gemini AI
// service. It translates between the application's domain models and the
// Gemini API without exposing the details of the external service to the
// core application.
//
// Key components:
//
// 1. Translator:
//   - Implements the translation.Translator interface
//   - Handles communication with the Gemini API
//   - Reports coarse progress milestones through the attempt's callback
//
// 2. Prompt Management:
//   - Builds translation prompts from the request's language pair
//   - Instructs the model to return the bare translation only
//
// 3. Error Handling:
//   - Surfaces raw API failures unchanged; retry policy and error
//     classification belong to the orchestration layer
//   - Maps empty and blocked responses to typed errors
//
// The package depends on Google's genai client library for communicating
// with the Gemini API, and handles authentication, request formatting, and
// response processing according to Google's API specifications.
package gemini
