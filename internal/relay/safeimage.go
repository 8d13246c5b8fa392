package relay

// SafeImage is the fixed placeholder substituted for a frame that fails the
// safety check: a 1x1 transparent PNG, base64 encoded the same way backends
// encode preview frames.
const SafeImage = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="
