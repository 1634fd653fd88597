package models

// This file serves as the central export point for all database models
// Import this package to access all model types

// All models are automatically exported from their respective files:
// - User, RefreshToken from user.go
// - Interview, Scorecard and the scorecard payload types from interview.go
// - Subscription from subscription.go

// Database schema overview:
// 1. users - Email/password accounts with bcrypt hashes
// 2. refresh_tokens - Hashed long-lived session tokens
// 3. interviews - One row per saved mock interview (setup + full Q&A transcript)
// 4. scorecards - The AI evaluation of an interview, exactly one per interview
// 5. subscriptions - One row per user, mutated by Stripe webhook events
