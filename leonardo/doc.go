/*
Package leonardo is a client for the Leonardo.Ai image-generation REST API.

The API is asynchronous: a submission returns a job identifier, and results
become available only after the job reaches a terminal status. The client
wraps that contract in a bounded submit-then-poll workflow.

# Core workflow

  - CreateGeneration: submits one job and returns its identifier.
  - PollGeneration: queries status at a fixed 2s interval until COMPLETE,
    FAILED, or the attempt budget min(30, timeout/2s) is exhausted.
  - Generate: composes the two into a single sequential workflow.

# Account operations

GetUserInfo, ListGenerations, DeleteGeneration cover the account surface, and
DownloadImages fetches finished artifacts concurrently.

# Failure model

Every failure is an *Error carrying a code, a message with the HTTP status
and a bounded body excerpt, and an advisory retryable flag. No call is ever
retried; polling on PENDING is a designed wait, not error recovery.
*/
package leonardo
