package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const (
	baseURL        = "http://localhost:8080"
	numUsers       = 50         // Number of users (one account each)
	numTransfers   = 5000       // Total number of transfers
	maxConcurrency = 100        // Maximum number of concurrent requests
	initialBalance = 10000      // Initial balance for each account
	maxAmount      = 200        // Maximum transfer amount
	successColor   = "\033[32m" // Green
	errorColor     = "\033[31m" // Red
	infoColor      = "\033[34m" // Blue
	resetColor     = "\033[0m"  // Reset color
)

type participant struct {
	UserID    int64
	AccountID int64
	Token     string
}

type registerResponse struct {
	ID int64 `json:"id"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type accountResponse struct {
	ID      int64           `json:"id"`
	Balance decimal.Decimal `json:"balance"`
}

type transferResponse struct {
	ID     int64           `json:"id"`
	Amount decimal.Decimal `json:"amount"`
}

func main() {
	rand.Seed(time.Now().UnixNano())

	fmt.Printf("%sstarting transfer load test with %d users and %d transfers%s\n",
		infoColor, numUsers, numTransfers, resetColor)

	participants := createParticipants(numUsers)
	fmt.Printf("%sCreated %d users with accounts%s\n", successColor, len(participants), resetColor)

	initialTotal := totalBalance(participants)
	fmt.Printf("%sInitial total balance: %s%s\n", infoColor, initialTotal, resetColor)

	// Create semaphore for limiting concurrency
	sem := make(chan struct{}, maxConcurrency)
	var wg sync.WaitGroup

	startTime := time.Now()
	successCount := 0
	rejectedCount := 0
	errorCount := 0
	var countMutex sync.Mutex

	fmt.Printf("%slaunching %d transfers with max concurrency of %d%s\n",
		infoColor, numTransfers, maxConcurrency, resetColor)

	for i := 0; i < numTransfers; i++ {
		wg.Add(1)
		sem <- struct{}{} // Acquire semaphore

		go func(txNum int) {
			defer wg.Done()
			defer func() { <-sem }() // Release semaphore

			sender := participants[rand.Intn(len(participants))]
			receiver := participants[rand.Intn(len(participants))]

			amount := int64(1 + rand.Intn(maxAmount))

			status, err := createTransfer(sender, receiver, amount)

			countMutex.Lock()
			switch {
			case err != nil:
				errorCount++
				if txNum%100 == 0 {
					fmt.Printf("%sTransfer failed: %v%s\n", errorColor, err, resetColor)
				}
			case status == http.StatusCreated:
				successCount++
				if txNum%500 == 0 {
					fmt.Printf("%sTransfer %d: user %d -> user %d amount %d%s\n",
						successColor, txNum, sender.UserID, receiver.UserID, amount, resetColor)
				}
			case status == http.StatusUnprocessableEntity:
				// insufficient funds is an expected outcome under contention
				rejectedCount++
			default:
				errorCount++
			}
			countMutex.Unlock()
		}(i)
	}

	wg.Wait()
	duration := time.Since(startTime)

	fmt.Printf("\n%s=== Transfer Load Test Results ===%s\n", infoColor, resetColor)
	fmt.Printf("Total transfers attempted: %d\n", numTransfers)
	fmt.Printf("Committed: %s%d%s\n", successColor, successCount, resetColor)
	fmt.Printf("Rejected (insufficient funds): %d\n", rejectedCount)
	fmt.Printf("Errors: %s%d%s\n", errorColor, errorCount, resetColor)
	fmt.Printf("Duration: %.2f seconds\n", duration.Seconds())
	fmt.Printf("Throughput: %.2f transfers/second\n", float64(numTransfers)/duration.Seconds())

	// Conservation check: internal transfers must not create or destroy money
	finalTotal := totalBalance(participants)
	if finalTotal.Equal(initialTotal) {
		fmt.Printf("%sConservation holds: total balance still %s%s\n", successColor, finalTotal, resetColor)
	} else {
		fmt.Printf("%sCONSERVATION VIOLATED: total balance %s, expected %s%s\n",
			errorColor, finalTotal, initialTotal, resetColor)
	}
}

// createParticipants registers users, logs them in, and opens one account per
// user through the API.
func createParticipants(n int) []participant {
	participants := make([]participant, 0, n)

	for i := 0; i < n; i++ {
		name := fmt.Sprintf("loaduser%d", i)
		email := fmt.Sprintf("%s@example.com", name)

		var reg registerResponse
		if err := postJSON("/api/auth/register", "", map[string]string{
			"name": name, "email": email, "password": "load-test",
		}, &reg); err != nil {
			panic(fmt.Sprintf("failed to register %s: %v", name, err))
		}

		var login loginResponse
		if err := postJSON("/api/auth/login", "", map[string]string{
			"email": email, "password": "load-test",
		}, &login); err != nil {
			panic(fmt.Sprintf("failed to login %s: %v", name, err))
		}

		var account accountResponse
		if err := postJSON("/api/accounts", login.Token, map[string]interface{}{
			"userId":        reg.ID,
			"accountNumber": fmt.Sprintf("LOAD-%04d", i),
			"balance":       initialBalance,
		}, &account); err != nil {
			panic(fmt.Sprintf("failed to create account for %s: %v", name, err))
		}

		participants = append(participants, participant{
			UserID:    reg.ID,
			AccountID: account.ID,
			Token:     login.Token,
		})
	}

	return participants
}

func createTransfer(sender, receiver participant, amount int64) (int, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"senderId":   sender.UserID,
		"receiverId": receiver.UserID,
		"amount":     amount,
	})

	req, err := http.NewRequest("POST", baseURL+"/api/transactions", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+sender.Token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var tr transferResponse
	_ = json.NewDecoder(resp.Body).Decode(&tr)
	return resp.StatusCode, nil
}

func totalBalance(participants []participant) decimal.Decimal {
	total := decimal.Zero
	for _, p := range participants {
		var account accountResponse
		if err := getJSON(fmt.Sprintf("/api/accounts/%d", p.AccountID), p.Token, &account); err != nil {
			panic(fmt.Sprintf("failed to read account %d: %v", p.AccountID, err))
		}
		total = total.Add(account.Balance)
	}
	return total
}

func postJSON(path, token string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, path)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func getJSON(path, token string, out interface{}) error {
	req, err := http.NewRequest("GET", baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, path)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
